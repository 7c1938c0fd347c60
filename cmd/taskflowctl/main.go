// Command taskflowctl is the TaskFlow operator CLI.
//
// Usage:
//
//	taskflowctl credentials template
//	taskflowctl smoke --base-url http://localhost:5000
//	taskflowctl send --token <device-token> --title "Hello" --body "World"
//	taskflowctl send --topic task-reminders --title "Task Reminder"
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/fcm"
	"github.com/taskflowhq/taskflow-api/internal/notifications"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "taskflowctl",
		Short: "TaskFlow backend operator CLI",
	}

	root.AddCommand(credentialsCmd())
	root.AddCommand(smokeCmd())
	root.AddCommand(sendCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// credentials command
// --------------------------------------------------------------------------

func credentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Firebase credential helpers",
	}

	var out string
	template := &cobra.Command{
		Use:   "template",
		Short: "Write a service account key template to fill in",
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl := map[string]string{
				"type":                        "service_account",
				"project_id":                  "YOUR_PROJECT_ID",
				"private_key_id":              "YOUR_PRIVATE_KEY_ID",
				"private_key":                 "YOUR_PRIVATE_KEY",
				"client_email":                "YOUR_CLIENT_EMAIL",
				"client_id":                   "YOUR_CLIENT_ID",
				"auth_uri":                    "https://accounts.google.com/o/oauth2/auth",
				"token_uri":                   "https://oauth2.googleapis.com/token",
				"auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
				"client_x509_cert_url":        "YOUR_CLIENT_CERT_URL",
			}
			raw, err := json.MarshalIndent(tmpl, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, raw, 0o600); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			logger.Info("Service account key template created", "path", out)
			logger.Info("Replace the placeholder values with your Firebase Admin SDK credentials")
			return nil
		},
	}
	template.Flags().StringVar(&out, "out", "serviceAccountKey.json.template", "output path")

	cmd.AddCommand(template)
	return cmd
}

// --------------------------------------------------------------------------
// smoke command
// --------------------------------------------------------------------------

func smokeCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Probe a running backend: health, login rejection, auth enforcement",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 5 * time.Second}
			failures := 0

			// Health must answer 200.
			resp, err := client.Get(baseURL + "/api/health")
			if err != nil {
				return fmt.Errorf("backend unreachable at %s: %w", baseURL, err)
			}
			resp.Body.Close()
			failures += expect(resp.StatusCode == http.StatusOK,
				"health check", fmt.Sprintf("status %d", resp.StatusCode))

			// Login must reject a bogus Firebase token.
			resp, err = client.Post(baseURL+"/api/login", "application/json",
				strings.NewReader(`{"firebase_token":"bogus"}`))
			if err != nil {
				return fmt.Errorf("login probe: %w", err)
			}
			resp.Body.Close()
			failures += expect(resp.StatusCode == http.StatusUnauthorized,
				"login rejects invalid tokens", fmt.Sprintf("status %d", resp.StatusCode))

			// Protected endpoints must require a session token.
			for _, path := range []string{"/api/send-notification", "/api/analytics/event"} {
				resp, err = client.Post(baseURL+path, "application/json", strings.NewReader(`{}`))
				if err != nil {
					return fmt.Errorf("auth probe %s: %w", path, err)
				}
				resp.Body.Close()
				failures += expect(resp.StatusCode == http.StatusUnauthorized,
					path+" requires auth", fmt.Sprintf("status %d", resp.StatusCode))
			}

			if failures > 0 {
				return fmt.Errorf("%d smoke check(s) failed", failures)
			}
			logger.Info("All smoke checks passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:5000", "backend base URL")
	return cmd
}

func expect(ok bool, what, detail string) int {
	if ok {
		logger.Info("OK: " + what)
		return 0
	}
	logger.Error("FAIL: "+what, "got", detail)
	return 1
}

// --------------------------------------------------------------------------
// send command
// --------------------------------------------------------------------------

func sendCmd() *cobra.Command {
	var token, topic, title, body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a test notification directly through FCM",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (token == "") == (topic == "") {
				return fmt.Errorf("exactly one of --token or --topic is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			fbApp := fcm.New(fcm.Credentials{
				File:        cfg.FirebaseCredentialsFile,
				ProjectID:   cfg.FirebaseProjectID,
				PrivateKey:  cfg.FirebasePrivateKey,
				ClientEmail: cfg.FirebaseClientEmail,
				ClientID:    cfg.FirebaseClientID,
			}, logger)
			client, err := fbApp.Messaging(ctx)
			if err != nil {
				return fmt.Errorf("FCM unavailable: %w", err)
			}
			dispatcher := notifications.New(client, cfg.SendTimeout, logger)

			var messageID string
			if token != "" {
				messageID, err = dispatcher.SendToUser(ctx, token, title, body, nil)
			} else {
				messageID, err = dispatcher.SendToTopic(ctx, topic, title, body, nil)
			}
			if err != nil {
				return err
			}
			logger.Info("Notification sent", "message_id", messageID)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "device registration token")
	cmd.Flags().StringVar(&topic, "topic", "", "topic name")
	cmd.Flags().StringVar(&title, "title", "TaskFlow Notification", "notification title")
	cmd.Flags().StringVar(&body, "body", "", "notification body")
	return cmd
}
