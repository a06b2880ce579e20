// Package internal carries operator tooling that is not part of the hub
// contract: a read-only HTML inspector over the badger keyspace.
package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"chat-hub/domain"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer serves a prefix-scan table of the database at
// /inspect?prefix=msg: (default). Read-only; intended for local debugging,
// not for exposure.
func StartDebugServer(db *badger.DB, port int, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, MapRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("localhost:%d", port), mux)
	}()
}

// MapRow renders one keyspace entry. Message and identity records are
// decoded; anything else falls back to a raw size row.
func MapRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    fmt.Sprintf("Size: %d bytes", len(val)),
	}

	switch {
	case strings.HasPrefix(key, "msg:"):
		var message domain.Message
		if err := json.Unmarshal(val, &message); err != nil {
			return row
		}
		row.Type = strings.ToUpper(string(message.Type))
		row.Timestamp = message.CreatedAt.Format(time.TimeOnly)
		row.EntityID = shorten(message.ID.String())
		row.Detail = fmt.Sprintf("%s -> %s : %s", message.SenderID, message.ReceiverID, snippet(message.Content))
		if message.IsDeleted {
			row.Detail += " [deleted]"
		}
		if message.Read() {
			row.Detail += " [read]"
		}
	case strings.HasPrefix(key, "identity:"):
		var identity domain.Identity
		if err := json.Unmarshal(val, &identity); err != nil {
			return row
		}
		row.Type = "IDENTITY"
		row.Timestamp = identity.LastSeen.Format(time.TimeOnly)
		row.EntityID = shorten(identity.ID)
		if identity.Online {
			row.Detail = "online"
		} else {
			row.Detail = "offline"
		}
	case strings.HasPrefix(key, "conv:"):
		row.Type = "INDEX"
		row.Detail = string(val)
	}
	return row
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func snippet(content string) string {
	if len(content) > 48 {
		return content[:48] + "..."
	}
	return content
}
