// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"fmt"
	"io"
	"net/netip"
	"slices"
	"strings"
	"sync"

	"github.com/miekg/dns"
)

// Table maps domain names to IPv4 addresses using exact, case-sensitive
// matching. It is safe for concurrent use.
//
// Construct using [NewTable] or [ParseZone].
type Table struct {
	mu      sync.RWMutex
	records map[string]netip.Addr
}

// NewTable returns an empty [*Table].
func NewTable() *Table {
	return &Table{records: make(map[string]netip.Addr)}
}

// Add maps name to addr, replacing any previous mapping.
func (t *Table) Add(name string, addr netip.Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[name] = addr.Unmap()
}

// Lookup returns the address of name, if any.
func (t *Table) Lookup(name string) (netip.Addr, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	addr, found := t.records[name]
	return addr, found
}

// Len returns the number of names in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Names returns the names in the table sorted lexicographically.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.records))
	for name := range t.records {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseZone builds a [*Table] from the A records of an RFC 1035 zone file
// read from r. Records of other types are ignored. The filename is only
// used in error messages.
//
// Owner names are stored without the trailing dot, so "example.com." in
// the zone file is looked up as "example.com".
func ParseZone(r io.Reader, filename string) (*Table, error) {
	table := NewTable()
	zp := dns.NewZoneParser(r, ".", filename)
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		record, isA := rr.(*dns.A)
		if !isA {
			continue
		}
		addr, valid := netip.AddrFromSlice(record.A.To4())
		if !valid {
			return nil, fmt.Errorf("%s: invalid address for %s", filename, record.Hdr.Name)
		}
		table.Add(strings.TrimSuffix(record.Hdr.Name, "."), addr)
	}
	if err := zp.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
