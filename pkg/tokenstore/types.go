// Package tokenstore persists the single bearer token of the signed-in user.
//
// Exactly one token is stored at a time, under a fixed key. Storage failures
// never surface as errors: they are logged and reading reports "no token",
// which callers treat as signed out.
//
// Only the session manager writes the store. Everything else that needs the
// token (the REST client) gets it through the read-only Reader view.
//
// Example usage:
//
//	store, err := tokenstore.NewBoltStore(tokenstore.Config{
//	    DBPath: "~/.config/squad-console/session.db",
//	}, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	store.Save(token)
//	if tok, ok := store.Read(); ok {
//	    fmt.Println("signed in")
//	}
package tokenstore

import "time"

// Key is the storage key of the token.
const Key = "auth_token"

// DefaultDBPath is where the token database lives unless configured.
const DefaultDBPath = "~/.config/squad-console/session.db"

// Reader is the read-only view handed to token consumers.
type Reader interface {
	// Read returns the stored token and true, or "" and false if none is
	// stored or storage is unavailable.
	Read() (string, bool)
}

// Store holds at most one token.
type Store interface {
	Reader

	// Save stores token, replacing any previous one.
	Save(token string)

	// Clear removes the token. Clearing an empty store is not an error.
	Clear()
}

// Config contains bolt store configuration.
type Config struct {
	// DBPath is the database file. "~" expands to the home directory.
	// Default: ~/.config/squad-console/session.db.
	DBPath string

	// Timeout is how long to wait for the file lock.
	// Default: 1s.
	Timeout time.Duration
}
