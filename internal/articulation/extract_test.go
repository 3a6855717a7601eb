package articulation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probePayload struct {
	Summary string   `json:"summary"`
	Sources []string `json:"sources"`
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	response := "Here is my analysis:\n```json\n{\"summary\": \"ok\", \"sources\": [\"a\"]}\n```\nLet me know."

	raw, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "ok", "sources": ["a"]}`, raw)
}

func TestExtractJSON_BareObject(t *testing.T) {
	response := `Sure. {"summary": "ok", "sources": ["a"]} Anything else?`

	raw, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "ok", "sources": ["a"]}`, raw)
}

// Fenced and unfenced renditions of the same content must decode to
// identical structures.
func TestDecode_FencedAndBareEquivalent(t *testing.T) {
	body := `{"summary": "drought risk rising", "sources": ["NOAA", "IMD"]}`
	fenced := "```json\n" + body + "\n```"

	var fromFenced, fromBare probePayload
	require.NoError(t, Decode(fenced, &fromFenced))
	require.NoError(t, Decode(body, &fromBare))

	if diff := cmp.Diff(fromFenced, fromBare); diff != "" {
		t.Errorf("fenced vs bare mismatch (-fenced +bare):\n%s", diff)
	}
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	response := `{"summary": "uses {braces} and \"quotes\"", "sources": []}`

	raw, err := ExtractJSON(response)
	require.NoError(t, err)

	var payload probePayload
	require.NoError(t, Decode(raw, &payload))
	assert.Equal(t, `uses {braces} and "quotes"`, payload.Summary)
}

func TestExtractJSON_NestedObjects(t *testing.T) {
	response := `prefix {"outer": {"inner": 1}} suffix`

	raw, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"outer": {"inner": 1}}`, raw)
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := ExtractJSON("I could not produce a structured answer.")
	assert.Error(t, err)
}

func TestDecode_MalformedJSON(t *testing.T) {
	var payload probePayload
	err := Decode(`{"summary": "truncated`, &payload)
	assert.Error(t, err)
}

func TestExtractJSON_FenceWithProse(t *testing.T) {
	// Prose inside the fence before the object still yields the object.
	response := "```json\nAs requested:\n{\"summary\": \"x\", \"sources\": []}\n```"

	raw, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "x", "sources": []}`, raw)
}
