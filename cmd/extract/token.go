package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idextract/idextract/internal/auth"
	"github.com/idextract/idextract/internal/config"
)

func newTokenCmd(cfg func() *config.Config) *cobra.Command {
	var sub string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an HS256 bearer token for the upload endpoint (JWT_SECRET)",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := auth.SignToken(cfg().JWT.Secret, sub, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "", "token subject, used as the default user id (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.MarkFlagRequired("sub")
	return cmd
}
