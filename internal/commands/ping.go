package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"assetmix/internal/assetapi"
	"assetmix/internal/log"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the asset service is reachable",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup(cmd.Context(), nil)
		if err != nil {
			return err
		}
		client, err := assetapi.New(cfg.AssetAPIURL, cfg.AssetAPITimeout, assetapi.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("asset api client: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AssetAPITimeout)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			logger.Error("Asset service unreachable",
				log.FieldUpstream, client.BaseURL(),
				log.FieldError, err.Error(),
				log.FieldErrorType, log.ErrorTypeNetwork)
			return fmt.Errorf("ping %s: %w", client.BaseURL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "asset service at %s is reachable\n", client.BaseURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
