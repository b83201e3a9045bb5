package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojf/parish/internal/db"
	"github.com/lojf/parish/internal/web"
)

const familiesYAML = `
- id: F:0001-0001-0001
  address:
    city: San Jose
  contacts:
    - lastName: Nguyen
      firstName: Binh
      phone: 408 555 0100
  children:
    - childId: C:1
      lastName: Nguyen
      firstName: Bao
      dob: "2012-01-15"
- id: F:0002-0002-0002
  parishMember: true
  parishNumber: "4411"
  address:
    city: Milpitas
  contacts:
    - lastName: Tran
      firstName: Chi
      phone: "(408) 555-0101"
`

const eventsYAML = `
id: E:ADM
eventType: ADM
title: Admission 2025
year: 2025
level: PF
openDate: "2025-06-01"
fees:
  - code: SECF
    amount: 25
  - code: NPMF
    amount: 50
---
id: E:REG
eventType: REG
title: Catechism 2025
year: 2025
level: PC
openDate: "2025-08-01"
prerequisites:
  - eventId: E:ADM
`

const registrationsYAML = `
- eventId: E:ADM
  familyId: F:0001-0001-0001
  status: CONFIRMED
`

type harness struct {
	t   *testing.T
	url string
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "cli_test.db")))
	srv := httptest.NewServer(web.Router(web.Options{Quiet: true}))
	t.Cleanup(srv.Close)
	return &harness{t: t, url: srv.URL, dir: t.TempDir()}
}

func (h *harness) file(name, body string) string {
	h.t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func (h *harness) run(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := New(CommandContext{StdOut: &out, StdErr: &errOut})
	cmd.SetArgs(append([]string{
		"--api", h.url,
		"--env-file", filepath.Join(h.dir, "missing.env"),
		"--log-level", "error",
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run(args...)
	require.NoError(h.t, err, errOut)
	return out
}

func TestSettingsShowSeedsDefaults(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("settings", "show", "-o", "json")
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc["parishName"])

	out = h.mustRun("settings", "show")
	assert.Contains(t, out, "parishName:")
}

func TestFamiliesApplyAndList(t *testing.T) {
	h := newHarness(t)
	path := h.file("families.yaml", familiesYAML)

	out := h.mustRun("families", "apply", "-f", path)
	assert.Equal(t, "F:0001-0001-0001 created\nF:0002-0002-0002 created\n", out)

	out = h.mustRun("families", "apply", "-f", path)
	assert.Equal(t, "F:0001-0001-0001 unchanged\nF:0002-0002-0002 unchanged\n", out)

	out = h.mustRun("families", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, out, "Nguyen, Binh")
	assert.Contains(t, out, "(408) 555-0100")

	out = h.mustRun("families", "list", "--member")
	assert.NotContains(t, out, "Nguyen")
	assert.Contains(t, out, "Tran, Chi")

	out = h.mustRun("families", "list", "-q", "milpitas", "-o", "json")
	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "F:0002-0002-0002", docs[0]["id"])
}

func TestApplyReportsInvalidDocuments(t *testing.T) {
	h := newHarness(t)
	path := h.file("bad.yaml", "- id: F:9\n  contacts:\n    - lastName: Le\n      firstName: Mai\n      phone: call me\n")
	_, errOut, err := h.run("families", "apply", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 documents failed")
	assert.Contains(t, errOut, "F:9:")
	assert.Contains(t, errOut, "not a valid phone number")
}

func TestPrerequisitesAndRoster(t *testing.T) {
	h := newHarness(t)
	h.mustRun("families", "apply", "-f", h.file("families.yaml", familiesYAML))
	out := h.mustRun("events", "apply", "-f", h.file("events.yaml", eventsYAML))
	assert.Equal(t, "E:ADM created\nE:REG created\n", out)

	out = h.mustRun("events", "list", "--type", "reg")
	assert.Contains(t, out, "E:REG")
	assert.NotContains(t, out, "Admission")

	out = h.mustRun("events", "prereqs", "E:REG", "--family", "F:0001-0001-0001")
	assert.Contains(t, out, "missing")

	out = h.mustRun("registrations", "apply", "-f", h.file("regs.yaml", registrationsYAML))
	assert.Equal(t, "#1 created\n", out)

	out = h.mustRun("events", "prereqs", "E:REG", "--family", "F:0001-0001-0001")
	assert.Contains(t, out, "met")
	assert.NotContains(t, out, "missing")

	out = h.mustRun("registrations", "list", "--event", "E:ADM", "--status", "confirmed")
	assert.Contains(t, out, "Nguyen, Binh")
	assert.Contains(t, out, "75.00")

	out = h.mustRun("roster", "E:ADM", "--csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Registered,Registration,Status"))
	assert.Contains(t, lines[1], "Nguyen, Binh")

	_, _, err := h.run("roster", "E:NOPE")
	assert.Error(t, err)
}

func TestApplyAcceptsUnquotedDates(t *testing.T) {
	h := newHarness(t)
	body := strings.NewReplacer(`"2025-06-01"`, "2025-06-01", `"2025-08-01"`, "2025-08-01").Replace(eventsYAML)
	out := h.mustRun("events", "apply", "-f", h.file("events.yaml", body))
	assert.Equal(t, "E:ADM created\nE:REG created\n", out)

	out = h.mustRun("events", "list", "-o", "json")
	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)
	dates := map[any]any{}
	for _, d := range docs {
		dates[d["id"]] = d["openDate"]
	}
	assert.Equal(t, map[any]any{"E:ADM": "2025-06-01", "E:REG": "2025-08-01"}, dates)

	out = h.mustRun("families", "apply", "-f", h.file("families.yaml", strings.Replace(familiesYAML, `"2012-01-15"`, "2012-01-15", 1)))
	assert.Equal(t, "F:0001-0001-0001 created\nF:0002-0002-0002 created\n", out)
}

func TestReadDocumentsKeepsDatesAsStrings(t *testing.T) {
	docs, err := readDocuments(strings.NewReader(`
id: F:1
children:
  - dob: 2012-01-15
seen: 2025-06-01T08:30:00Z
`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []any{map[string]any{"dob": "2012-01-15"}}, docs[0]["children"])
	assert.Equal(t, "2025-06-01T08:30:00Z", docs[0]["seen"])
}
