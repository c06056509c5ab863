package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiesman99/tilemark/internal/telegram"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram bot webhook",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Point the Telegram bot at this server",
	Long: `Register the webhook URL with Telegram. The URL defaults to
telegram.webhook_url and must be https. telegram.webhook_secret, when set, is
sent along so that the server can authenticate updates.

Example:
  tilemark webhook set https://bot.example.com/api/v1/telegram/webhook`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWebhookSet,
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the Telegram bot webhook",
	Args:  cobra.NoArgs,
	RunE:  runWebhookDelete,
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookSetCmd, webhookDeleteCmd)

	webhookSetCmd.Flags().Bool("drop-pending", false, "discard updates queued while no webhook was set")
	webhookDeleteCmd.Flags().Bool("drop-pending", false, "discard queued updates")
}

func telegramClient(cmd *cobra.Command) (*telegram.Client, string, string, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, "", "", err
	}
	if !cfg.TelegramEnabled() {
		return nil, "", "", errors.New("telegram.token is not configured")
	}
	return telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.APIURL), cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret, nil
}

func runWebhookSet(cmd *cobra.Command, args []string) error {
	client, url, secret, err := telegramClient(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		url = args[0]
	}
	if url == "" {
		return errors.New("no webhook URL given (argument or telegram.webhook_url)")
	}
	dropPending, _ := cmd.Flags().GetBool("drop-pending")

	err = client.SetWebhook(cmd.Context(), telegram.SetWebhookRequest{
		URL:                url,
		SecretToken:        secret,
		AllowedUpdates:     []string{"message"},
		DropPendingUpdates: dropPending,
	})
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Webhook set to %s\n", url)
	return nil
}

func runWebhookDelete(cmd *cobra.Command, args []string) error {
	client, _, _, err := telegramClient(cmd)
	if err != nil {
		return err
	}
	dropPending, _ := cmd.Flags().GetBool("drop-pending")

	if err := client.DeleteWebhook(cmd.Context(), dropPending); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Webhook deleted")
	return nil
}
