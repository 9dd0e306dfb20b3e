package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04"

func (c *Cli) runUsers(ctx context.Context) error {
	if _, err := c.restoreSession(ctx); err != nil {
		return err
	}

	users, err := c.api.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		c.io.Println("No users.")
		return nil
	}

	table := newTable(c.io, "Username", "Name")
	for _, u := range users {
		table.Append([]string{u.Username, u.FirstName + " " + u.LastName})
	}
	table.Render()
	return nil
}

func (c *Cli) runProfile(ctx context.Context, args []string) error {
	session, err := c.restoreSession(ctx)
	if err != nil {
		return err
	}

	username := session.Username
	if len(args) > 0 {
		username = args[0]
	}

	user, err := c.api.GetUser(ctx, username)
	if err != nil {
		return err
	}

	c.io.Printf("Username:   %s\n", user.Username)
	c.io.Printf("Name:       %s %s\n", user.FirstName, user.LastName)
	c.io.Printf("Phone:      %s\n", user.Phone)
	c.io.Printf("Joined:     %s\n", user.JoinAt.Format(timeLayout))
	c.io.Printf("Last login: %s\n", formatOptional(user.LastLoginAt))
	return nil
}

func (c *Cli) runInbox(ctx context.Context) error {
	session, err := c.restoreSession(ctx)
	if err != nil {
		return err
	}

	messages, err := c.api.MessagesTo(ctx, session.Username)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		c.io.Println("Inbox is empty.")
		return nil
	}

	table := newTable(c.io, "ID", "From", "Sent", "Read", "Text")
	for _, m := range messages {
		table.Append([]string{
			strconv.FormatInt(m.ID, 10), m.FromUser.Username,
			m.SentAt.Format(timeLayout), formatOptional(m.ReadAt), preview(m.Body),
		})
	}
	table.Render()
	return nil
}

func (c *Cli) runOutbox(ctx context.Context) error {
	session, err := c.restoreSession(ctx)
	if err != nil {
		return err
	}

	messages, err := c.api.MessagesFrom(ctx, session.Username)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		c.io.Println("Outbox is empty.")
		return nil
	}

	table := newTable(c.io, "ID", "To", "Sent", "Read", "Text")
	for _, m := range messages {
		table.Append([]string{
			strconv.FormatInt(m.ID, 10), m.ToUser.Username,
			m.SentAt.Format(timeLayout), formatOptional(m.ReadAt), preview(m.Body),
		})
	}
	table.Render()
	return nil
}

func (c *Cli) runSend(ctx context.Context, args []string) error {
	if _, err := c.restoreSession(ctx); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("recipient is required")
	}

	to := args[0]
	body := strings.Join(args[1:], " ")
	if body == "" {
		var err error
		if body, err = c.io.ReadInput("Message: "); err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}
	}
	if body == "" {
		return fmt.Errorf("message cannot be empty")
	}

	sent, err := c.api.SendMessage(ctx, to, body)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Message %d sent to %s\n", sent.ID, sent.ToUsername)
	return nil
}

func (c *Cli) runShow(ctx context.Context, args []string) error {
	if _, err := c.restoreSession(ctx); err != nil {
		return err
	}
	id, err := parseMessageID(args)
	if err != nil {
		return err
	}

	m, err := c.api.GetMessage(ctx, id)
	if err != nil {
		return err
	}

	c.io.Printf("Message #%d\n", m.ID)
	c.io.Printf("From: %s (%s %s)\n", m.FromUser.Username, m.FromUser.FirstName, m.FromUser.LastName)
	c.io.Printf("To:   %s (%s %s)\n", m.ToUser.Username, m.ToUser.FirstName, m.ToUser.LastName)
	c.io.Printf("Sent: %s\n", m.SentAt.Format(timeLayout))
	c.io.Printf("Read: %s\n", formatOptional(m.ReadAt))
	c.io.Println()
	c.io.Println(m.Body)
	return nil
}

func (c *Cli) runRead(ctx context.Context, args []string) error {
	if _, err := c.restoreSession(ctx); err != nil {
		return err
	}
	id, err := parseMessageID(args)
	if err != nil {
		return err
	}

	receipt, err := c.api.MarkRead(ctx, id)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Message %d read at %s\n", receipt.ID, receipt.ReadAt.Format(timeLayout))
	return nil
}

// newTable возвращает таблицу без рамок, колонки выровнены по левому краю
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(timeLayout)
}

// preview обрезает текст до одной строки в 40 символов
func preview(body string) string {
	line, _, _ := strings.Cut(body, "\n")
	r := []rune(line)
	if len(r) > 40 {
		return string(r[:39]) + "…"
	}
	return line
}
