// Package tracking issues the shipment identifiers handed to senders once a
// parcel is paid.
package tracking

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Prefix starts every tracking ID.
const Prefix = "TRK"

// Pattern matches every ID produced by a Generator.
var Pattern = regexp.MustCompile(`^TRK-\d{8}-[0-9A-F]{8}$`)

// Generator produces IDs of the form TRK-<yyyymmdd>-<8 hex>. The suffix is
// 4 bytes from crypto/rand; IDs already issued today by this Generator are
// redrawn, so one process never hands out the same ID twice.
type Generator struct {
	mu   sync.Mutex
	day  string
	seen map[string]struct{}
	now  func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

var defaultGenerator = NewGenerator()

// New returns an ID for the current UTC date from the shared generator.
func New() string {
	return defaultGenerator.Next()
}

func (g *Generator) Next() string {
	return g.NextAt(g.now())
}

// NextAt returns an ID dated t, converted to UTC.
func (g *Generator) NextAt(t time.Time) string {
	day := t.UTC().Format("20060102")

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.day != day {
		g.day = day
		g.seen = make(map[string]struct{})
	}
	for {
		id := Prefix + "-" + day + "-" + randomSuffix()
		if _, dup := g.seen[id]; dup {
			continue
		}
		g.seen[id] = struct{}{}
		return id
	}
}

func randomSuffix() string {
	var b [4]byte
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b[:])
	return strings.ToUpper(hex.EncodeToString(b[:]))
}

// Valid reports whether id looks like a tracking ID.
func Valid(id string) bool {
	return Pattern.MatchString(id)
}
