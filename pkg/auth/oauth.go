package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	// ClientSecretsFile is the downloaded Google API credentials.json
	// (client_id, client_secret, redirect_uris), expected in the app's
	// config directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile caches the user's OAuth token (access + refresh token).
	TokenFile = "token.json"

	// LocalhostAuthPort is where the local server listens to capture the
	// OAuth redirect. Must match the redirect URI registered in the Google
	// Cloud Console.
	LocalhostAuthPort = "6789"

	xdgAppName = "mailtask"
)

// GetConfig builds an oauth2.Config from the client secrets file, forcing
// the redirect URL onto our localhost capture port.
func GetConfig(scopes []string) (*oauth2.Config, error) {
	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(filepath.Join(xdgConfigBase, ClientSecretsFile))
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	parsed, parseErr := url.Parse(cfg.RedirectURL)
	switch {
	case parseErr != nil:
		log.Printf("Warning: could not parse RedirectURL %q: %v. Using it as is.", cfg.RedirectURL, parseErr)
	case parsed.Hostname() == "localhost" || parsed.Hostname() == "127.0.0.1":
		if parsed.Port() != LocalhostAuthPort {
			parsed.Host = fmt.Sprintf("%s:%s", parsed.Hostname(), LocalhostAuthPort)
			cfg.RedirectURL = parsed.String()
		}
	case cfg.RedirectURL == "urn:ietf:wg:oauth:2.0:oob":
		cfg.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	default:
		log.Printf("Warning: RedirectURL in credentials.json is not a localhost callback: %s", cfg.RedirectURL)
	}

	return cfg, nil
}

// GetClient returns an authenticated *http.Client, loading a cached token
// or running the browser authorization flow when none exists.
func GetClient(ctx context.Context, scopes []string) (*http.Client, error) {
	cfg, err := GetConfig(scopes)
	if err != nil {
		return nil, err
	}

	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return nil, err
	}

	tokenFile := filepath.Join(xdgConfigBase, TokenFile)
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		log.Printf("No existing token found at %s. Initiating web authorization flow...", tokenFile)
		tok, err = getTokenFromWeb(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		saveToken(tokenFile, tok)
	}

	client := cfg.Client(ctx, tok)

	// cfg.Client refreshes expired tokens transparently; persist the
	// refreshed token so the next run skips the refresh round trip.
	go func() {
		current, err := cfg.TokenSource(ctx, tok).Token()
		if err != nil {
			log.Printf("Warning: could not read current token for re-saving: %v", err)
			return
		}
		if current.AccessToken != tok.AccessToken || current.RefreshToken != tok.RefreshToken {
			saveToken(tokenFile, current)
		}
	}()

	return client, nil
}

// getTokenFromWeb runs the OAuth 2.0 authorization code flow, capturing
// the redirect on a local HTTP server.
func getTokenFromWeb(cfg *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string)
	errCh := make(chan error)

	listener, err := net.Listen("tcp", ":"+LocalhostAuthPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect URL")
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// AccessTypeOffline is required to get a refresh token back.
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Please open the following URL in your browser to authorize mailtask:\n%s\n", authURL)
	log.Println("Waiting for authorization code...")

	select {
	case authCode := <-codeCh:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(ctx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		server.Shutdown(ctx)
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-time.After(5 * time.Minute):
		server.Shutdown(context.Background())
		return nil, fmt.Errorf("authorization timed out. Please try again")
	}
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) {
	fmt.Printf("Saving authentication token to: %s\n", path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		log.Printf("Warning: could not create token directory: %v", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		log.Fatalf("Unable to cache OAuth token to %s: %v", path, err)
	}
	defer f.Close()
	json.NewEncoder(f).Encode(token)
}

// GetGmailService creates an authenticated read-only Gmail service.
func GetGmailService(ctx context.Context) (*gmail.Service, error) {
	client, err := GetClient(ctx, []string{gmail.GmailReadonlyScope})
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client for Gmail API: %w", err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Gmail service: %w", err)
	}
	return srv, nil
}

func GetXdgHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}
