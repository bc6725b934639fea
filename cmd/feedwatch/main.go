// Command feedwatch tails the live board feed and prints one line per event.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boardapi/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

func main() {
	url := flag.String("url", "ws://localhost:8375/api/ws/boards", "Live feed WebSocket URL")
	token := flag.String("token", "", "Optional bearer token")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watch(ctx, *url, *token, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// watch prints events from url until ctx is done or the server hangs up.
func watch(ctx context.Context, url, token string, out io.Writer) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxMessageSize)

	go func() {
		<-ctx.Done()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("feed closed: %w", err)
			}
			return fmt.Errorf("read: %w", err)
		}

		var ev models.BoardEvent
		if err := json.Unmarshal(message, &ev); err != nil || ev.Type == "" {
			_, _ = fmt.Fprintf(out, "? %s\n", message)
			continue
		}
		_, _ = fmt.Fprintln(out, formatEvent(ev, time.Now()))
	}
}

func formatEvent(ev models.BoardEvent, now time.Time) string {
	when := humanize.RelTime(ev.OccurredAt, now, "ago", "from now")
	line := fmt.Sprintf("[%s] %s board=%d user=%d", when, ev.Type, ev.BoardID, ev.UserID)
	if ev.Category != "" {
		line += " category=" + ev.Category
	}
	if ev.Title != "" {
		line += fmt.Sprintf(" title=%q", ev.Title)
	}
	return line
}
