package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iudanet/messagely/internal/client/storage"
	"github.com/iudanet/messagely/internal/validation"
	"github.com/iudanet/messagely/pkg/api"
	"github.com/iudanet/messagely/pkg/client"
)

var _ API = (*client.Client)(nil)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	password, prompted, err := c.getPassword(fmt.Sprintf("Password (min %d chars): ", validation.MinPasswordLen))
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	if prompted {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if confirm != password {
			return fmt.Errorf("passwords do not match")
		}
	}

	req := api.RegisterRequest{Username: username, Password: password}
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"First name: ", &req.FirstName},
		{"Last name: ", &req.LastName},
		{"Phone: ", &req.Phone},
	}
	for _, f := range fields {
		if *f.dst, err = c.io.ReadInput(f.prompt); err != nil {
			return fmt.Errorf("failed to read %q: %w", f.prompt, err)
		}
	}

	c.io.Println()
	c.io.Println("Registering user...")

	token, err := c.api.Register(ctx, req)
	if err != nil {
		return err
	}
	if err := c.saveSession(ctx, username, token); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("Username: %s\n", username)
	c.io.Println("You are now logged in.")
	return nil
}

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = c.io.ReadInput("Username: "); err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, _, err := c.getPassword("Password: ")
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	token, err := c.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := c.saveSession(ctx, username, token); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", username)
	c.io.Println("Your session has been saved.")
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if err := c.sessions.DeleteSession(ctx); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("Not logged in.")
			return nil
		}
		return fmt.Errorf("logout failed: %w", err)
	}
	c.session = nil
	c.api.SetToken("")

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	session, err := c.restoreSession(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'messagely login' to authenticate.")
		return nil
	}
	if err != nil {
		return err
	}

	c.io.Printf("Username: %s\n", session.Username)
	c.io.Printf("Server: %s\n", session.ServerURL)
	c.io.Printf("Logged in: %s\n", session.SavedAt.Format(time.RFC3339))

	// Токен мог истечь или сервер мог сменить ключ
	if _, err := c.api.GetUser(ctx, session.Username); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			c.io.Println("Status: Session rejected by server")
			c.io.Println("⚠️  Please login again.")
			return nil
		}
		return fmt.Errorf("failed to check session: %w", err)
	}

	c.io.Println("Status: Authenticated")
	return nil
}
