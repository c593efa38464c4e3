// Package blocking tracks domains that flagged the archiver as a bot.
//
// A block holds per domain and per request context until the domain's
// cooldown passes. Blocks are kept in memory and persisted to the registry so
// they survive restarts.
package blocking

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/domain/logger"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/net/publicsuffix"
)

// ErrBlocked is returned for requests to a domain that is cooling down.
var ErrBlocked = errors.New("domain blocked after bot detection")

// Context is the kind of session a block applies to.
type Context string

// Block contexts.
const (
	ContextCookie Context = "cookie"
	ContextUnauth Context = "unauth"
)

// Block is one active block.
type Block struct {
	Domain    string
	Context   Context
	BlockedAt time.Time
	Remaining time.Duration
}

// Blocker holds the blocked domains.
type Blocker struct {
	db  *sql.DB
	now func() time.Time

	mu      sync.RWMutex
	blocked map[string]map[Context]time.Time
}

// New returns a Blocker persisting to db. A nil db keeps blocks in memory only.
func New(db *sql.DB) *Blocker {
	return &Blocker{
		db:      db,
		now:     time.Now,
		blocked: make(map[string]map[Context]time.Time),
	}
}

// Load reads persisted blocks and drops the expired ones.
func (b *Blocker) Load() error {
	if b.db == nil {
		return nil
	}
	rows, err := sq.Select(consts.QBlockedDomain, consts.QBlockedContext, consts.QBlockedAt).
		From(consts.DBBlockedDomains).
		RunWith(b.db).
		Query()
	if err != nil {
		return fmt.Errorf("failed to load blocked domains: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Pl.E("Could not close rows for blocked domains: %v", err)
		}
	}()

	b.mu.Lock()
	count := 0
	for rows.Next() {
		var (
			domain, c string
			at        time.Time
		)
		if err := rows.Scan(&domain, &c, &at); err != nil {
			logger.Pl.W("Failed to scan blocked domain row: %v", err)
			continue
		}
		b.set(domain, Context(c), at)
		count++
	}
	b.mu.Unlock()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating blocked domains: %w", err)
	}

	if count > 0 {
		logger.Pl.I("Loaded %d blocked domain(s)", count)
	}
	return b.CleanExpired()
}

// Block blocks the domain of rawURL for the context.
func (b *Blocker) Block(rawURL string, c Context) error {
	domain := Domain(rawURL)
	now := b.now()

	b.mu.Lock()
	b.set(domain, c, now)
	b.mu.Unlock()

	if b.db != nil {
		if _, err := sq.Insert(consts.DBBlockedDomains).
			Options("OR REPLACE").
			Columns(consts.QBlockedDomain, consts.QBlockedContext, consts.QBlockedAt).
			Values(domain, string(c), now).
			RunWith(b.db).
			Exec(); err != nil {
			return fmt.Errorf("failed to persist blocked domain %q (context: %s): %w", domain, c, err)
		}
	}

	logger.Pl.W("Blocked domain %q for context %q for %v due to bot detection", domain, c, Timeout(domain))
	return nil
}

// Check returns an ErrBlocked error when the domain of rawURL is blocked for the context.
func (b *Blocker) Check(rawURL string, c Context) error {
	if blocked, remaining := b.IsBlocked(rawURL, c); blocked {
		return fmt.Errorf("%w: %s (%s), retry in %v", ErrBlocked, Domain(rawURL), c, remaining.Round(time.Minute))
	}
	return nil
}

// IsBlocked reports whether the domain of rawURL is blocked for the context, and for how much longer.
func (b *Blocker) IsBlocked(rawURL string, c Context) (bool, time.Duration) {
	domain := Domain(rawURL)

	b.mu.RLock()
	at, ok := b.blocked[domain][c]
	b.mu.RUnlock()
	if !ok {
		return false, 0
	}

	remaining := at.Add(Timeout(domain)).Sub(b.now())
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// Unblock removes every block on the domain of rawURL.
func (b *Blocker) Unblock(rawURL string) error {
	domain := Domain(rawURL)

	b.mu.Lock()
	delete(b.blocked, domain)
	b.mu.Unlock()

	if b.db != nil {
		if _, err := sq.Delete(consts.DBBlockedDomains).
			Where(sq.Eq{consts.QBlockedDomain: domain}).
			RunWith(b.db).
			Exec(); err != nil {
			return fmt.Errorf("failed to unblock domain %q: %w", domain, err)
		}
	}
	logger.Pl.S("Unblocked domain %q", domain)
	return nil
}

// CleanExpired removes blocks whose cooldown has passed.
func (b *Blocker) CleanExpired() error {
	now := b.now()
	var errs []error

	b.mu.Lock()
	defer b.mu.Unlock()
	for domain, contexts := range b.blocked {
		for c, at := range contexts {
			if now.Before(at.Add(Timeout(domain))) {
				continue
			}
			delete(contexts, c)
			if b.db == nil {
				continue
			}
			if _, err := sq.Delete(consts.DBBlockedDomains).
				Where(sq.Eq{consts.QBlockedDomain: domain, consts.QBlockedContext: string(c)}).
				RunWith(b.db).
				Exec(); err != nil {
				errs = append(errs, fmt.Errorf("failed to remove expired block for %q (%s): %w", domain, c, err))
			}
		}
		if len(contexts) == 0 {
			delete(b.blocked, domain)
		}
	}
	return errors.Join(errs...)
}

// Active returns the active blocks ordered by domain and context.
func (b *Blocker) Active() []Block {
	now := b.now()

	b.mu.RLock()
	var out []Block
	for domain, contexts := range b.blocked {
		for c, at := range contexts {
			if remaining := at.Add(Timeout(domain)).Sub(now); remaining > 0 {
				out = append(out, Block{Domain: domain, Context: c, BlockedAt: at, Remaining: remaining})
			}
		}
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Context < out[j].Context
	})
	return out
}

// set records a block. Callers hold the lock.
func (b *Blocker) set(domain string, c Context, at time.Time) {
	if b.blocked[domain] == nil {
		b.blocked[domain] = make(map[Context]time.Time)
	}
	b.blocked[domain][c] = at
}

// Timeout returns the cooldown of a normalized domain.
func Timeout(domain string) time.Duration {
	if d, ok := consts.BotTimeoutMap[domain]; ok {
		return d
	}
	return consts.DefaultBotTimeout
}

// Domain reduces a URL or host name to its eTLD+1, e.g. www.youtube.com -> youtube.com.
func Domain(rawURL string) string {
	host := rawURL
	if strings.Contains(rawURL, "://") {
		if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	host = strings.ToLower(host)
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}

// Detected reports whether tool output carries a bot challenge.
func Detected(output string) bool {
	lower := strings.ToLower(output)
	for _, phrase := range []string{
		"confirm you're not a bot",
		"confirm you’re not a bot",
		"not a robot",
	} {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
