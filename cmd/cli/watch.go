package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		apiURL string
		token  string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream store change events from a running API server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = os.Getenv("POKEHUB_TOKEN")
			}
			if token == "" {
				return fmt.Errorf("--token (or POKEHUB_TOKEN) is required")
			}

			wsURL, err := websocketURL(apiURL, "/ws")
			if err != nil {
				return err
			}

			header := http.Header{}
			header.Set("Authorization", "Bearer "+token)
			conn, resp, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, header)
			if err != nil {
				if resp != nil {
					return fmt.Errorf("dial %s: %s", wsURL, resp.Status)
				}
				return fmt.Errorf("dial %s: %w", wsURL, err)
			}
			defer conn.Close()

			a.log.WithField("url", wsURL).Info("connected")
			out := cmd.OutOrStdout()
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						return nil
					}
					return err
				}
				fmt.Fprintln(out, string(msg))
			}
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token from /auth/login")
	return cmd
}
