// Package main mints HS256 bearer tokens for local runs with AUTH_MODE=secret.
// Tokens are signed with JWT_SECRET and are useless against a JWKS-verified deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = time.Hour

type tokenOutput struct {
	Token     string         `json:"token"`
	ExpiresIn string         `json:"expires_in"`
	Claims    map[string]any `json:"claims"`
}

func main() {
	userID := flag.String("user-id", "", "Subject claim. Generated if empty.")
	email := flag.String("email", "dev@example.com", "Email claim")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret (defaults to $JWT_SECRET)")
	issuer := flag.String("issuer", os.Getenv("AUTH_ISSUER"), "Issuer claim (optional)")
	audience := flag.String("audience", os.Getenv("AUTH_AUDIENCE"), "Audience claim (optional)")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live; negative values mint an expired token")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "a secret is required: pass -secret or set JWT_SECRET")
		os.Exit(1)
	}

	sub := *userID
	if sub == "" {
		sub = uuid.NewString()
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": *email,
		"iat":   now.Unix(),
		"exp":   now.Add(*ttl).Unix(),
	}
	if *issuer != "" {
		claims["iss"] = *issuer
	}
	if *audience != "" {
		claims["aud"] = *audience
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tokenOutput{Token: token, ExpiresIn: ttl.String(), Claims: claims}); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Subject:    %s\n", sub)
	fmt.Printf("Email:      %s\n", *email)
	fmt.Printf("Expires In: %s\n", *ttl)
	fmt.Println()
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/api/report-cards")
}
