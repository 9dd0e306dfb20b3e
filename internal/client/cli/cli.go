package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/messagely/internal/client/iocli"
	"github.com/iudanet/messagely/internal/client/storage"
	"github.com/iudanet/messagely/pkg/api"
)

// PasswordEnv overrides the interactive password prompt.
const PasswordEnv = "MESSAGELY_PASSWORD"

// ErrNotAuthenticated is returned by commands that need a saved session.
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'messagely login' first")

// API is the part of pkg/client the commands use.
type API interface {
	SetToken(token string)
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	ListUsers(ctx context.Context) ([]api.UserSummary, error)
	GetUser(ctx context.Context, username string) (*api.UserDetail, error)
	MessagesTo(ctx context.Context, username string) ([]api.InboxMessage, error)
	MessagesFrom(ctx context.Context, username string) ([]api.OutboxMessage, error)
	SendMessage(ctx context.Context, to, body string) (*api.SentMessage, error)
	GetMessage(ctx context.Context, id int64) (*api.MessageDetail, error)
	MarkRead(ctx context.Context, id int64) (*api.ReadReceipt, error)
}

// Passwords задает источники пароля помимо переменной окружения
type Passwords struct {
	FromFile string
}

type Cli struct {
	api       API
	sessions  storage.SessionStorage
	io        iocli.IO
	serverURL string
	passwords Passwords
	now       func() time.Time
	session   *storage.Session
}

func New(apiClient API, sessions storage.SessionStorage, io iocli.IO, serverURL string, passwords Passwords) *Cli {
	return &Cli{
		api:       apiClient,
		sessions:  sessions,
		io:        io,
		serverURL: serverURL,
		passwords: passwords,
		now:       time.Now,
	}
}

// Run выполняет одну команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx, args)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "users":
		return c.runUsers(ctx)
	case "profile":
		return c.runProfile(ctx, args)
	case "inbox":
		return c.runInbox(ctx)
	case "outbox":
		return c.runOutbox(ctx)
	case "send":
		return c.runSend(ctx, args)
	case "show":
		return c.runShow(ctx, args)
	case "read":
		return c.runRead(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// restoreSession загружает сохраненную сессию и передает токен API клиенту
func (c *Cli) restoreSession(ctx context.Context) (*storage.Session, error) {
	if c.session != nil {
		return c.session, nil
	}

	session, err := c.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	c.api.SetToken(session.Token)
	c.session = session
	return session, nil
}

func (c *Cli) saveSession(ctx context.Context, username, token string) error {
	session := &storage.Session{
		Username:  username,
		Token:     token,
		ServerURL: c.serverURL,
		SavedAt:   c.now(),
	}
	if err := c.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.session = session
	return nil
}

// getPassword retrieves the password with priority:
// 1. Environment variable MESSAGELY_PASSWORD
// 2. File from Passwords.FromFile
// 3. Interactive prompt (fallback)
// prompted сообщает, был ли пароль введен руками.
func (c *Cli) getPassword(prompt string) (password string, prompted bool, err error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, false, nil
	}

	if c.passwords.FromFile != "" {
		content, err := os.ReadFile(c.passwords.FromFile)
		if err != nil {
			return "", false, fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", false, fmt.Errorf("password file is empty")
		}
		return password, false, nil
	}

	password, err = c.io.ReadPassword(prompt)
	if err != nil {
		return "", true, fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", true, fmt.Errorf("password cannot be empty")
	}
	return password, true, nil
}

func parseMessageID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("message id is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid message id: %q", args[0])
	}
	return id, nil
}

func PrintUsage(io iocli.IO) {
	io.Println("Messagely Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  messagely [OPTIONS] COMMAND [ARGS]")
	io.Println()
	io.Println("Options:")
	io.Println("  --version               Show version information")
	io.Println("  --server URL            Server URL (default: http://localhost:8080)")
	io.Println("  --db PATH               Path to local session database (default: messagely-client.db)")
	io.Println("  --password-file PATH    Path to file containing the password")
	io.Println()
	io.Println("Password Priority (highest to lowest):")
	io.Println("  1. MESSAGELY_PASSWORD environment variable")
	io.Println("  2. --password-file (file path)")
	io.Println("  3. Interactive prompt (fallback)")
	io.Println()
	io.Println("Commands:")
	io.Println("  register                Register new user")
	io.Println("  login [username]        Login to server")
	io.Println("  logout                  Forget the saved session")
	io.Println("  status                  Show authentication status")
	io.Println("  users                   List users")
	io.Println("  profile [username]      Show a profile (default: your own)")
	io.Println("  inbox                   Messages sent to you")
	io.Println("  outbox                  Messages sent by you")
	io.Println("  send <to> [text...]     Send a message")
	io.Println("  show <id>               Show a message")
	io.Println("  read <id>               Mark a message as read")
	io.Println()
	io.Println("Examples:")
	io.Println("  messagely register")
	io.Println("  messagely login alice")
	io.Println("  messagely send bob 'see you at noon'")
	io.Println("  messagely --server https://example.com inbox")
}
