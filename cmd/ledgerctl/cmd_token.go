package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xelth-com/brokerledger/internal/config"
	"github.com/xelth-com/brokerledger/internal/utils"
)

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("API_JWT_SECRET is not set; the API accepts requests without tokens")
	}
	token, err := utils.GenerateToken(tokenSubject, cfg.JWTSecret, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
