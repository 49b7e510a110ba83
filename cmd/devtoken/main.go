// Package main mints bearer tokens signed with AUTH_JWT_SECRET, for local
// development against a server without a real identity provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/config"
	"github.com/eventhub/backend/internal/auth"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	sub := flag.String("sub", "", "user id (uuid); a new one is generated when empty")
	email := flag.String("email", "dev@example.com", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	id := uuid.New()
	if *sub != "" {
		id, err = uuid.Parse(*sub)
		if err != nil {
			logger.Fatal("invalid -sub", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Audience, cfg.Auth.Issuer)
	token, err := jwtService.Generate(id, *email, *ttl)
	if err != nil {
		logger.Fatal("sign token", zap.Error(err))
	}
	fmt.Fprintf(os.Stderr, "sub=%s\n", id)
	fmt.Println(token)
}
