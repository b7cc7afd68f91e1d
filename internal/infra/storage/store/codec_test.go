package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeWireFormat_RoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	original := time.Date(2024, 1, 8, 9, 0, 0, 123000000, loc)
	wire := FormatTime(original)
	assert.Equal(t, "2024-01-08T15:00:00.123Z", wire)

	parsed, err := ParseTime(wire)
	require.NoError(t, err)
	assert.True(t, original.Equal(parsed))
	assert.Equal(t, wire, FormatTime(parsed))
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-01-01T09:00:00Z", "2024-01-01T09:00:00.000Z", "2024-01-01T03:00:00-06:00"} {
		parsed, err := ParseTime(s)
		require.NoError(t, err, s)
		assert.True(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).Equal(parsed), s)
	}

	_, err := ParseTime("01/01/2024 09:00")
	assert.ErrorIs(t, err, ErrInvalidDocument)

	zero, err := ParseOptionalTime("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestMergePatch(t *testing.T) {
	doc := json.RawMessage(`{"status":"pending","notes":"first visit","patientName":"Ana"}`)

	merged, err := MergePatch(doc, Patch{"status": "approved", "notes": nil, "updatedAt": "2024-01-01T00:00:00.000Z"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"approved","patientName":"Ana","updatedAt":"2024-01-01T00:00:00.000Z"}`, string(merged))

	_, err = MergePatch(json.RawMessage(`[1,2]`), Patch{"a": 1})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "appointments/u1", AppointmentsPath("u1"))
	assert.Equal(t, "public_bookings/abc123def456", PublicBookingsPath("abc123def456"))
	assert.Equal(t, "therapists", TherapistsPath())

	assert.NoError(t, ValidatePath("appointments/u1", "a1"))
	assert.ErrorIs(t, ValidatePath("appointments/", "a1"), ErrInvalidPath)
	assert.ErrorIs(t, ValidatePath("appointments/u1", ""), ErrInvalidPath)
	assert.ErrorIs(t, ValidatePath("appointments/u1", "a/b"), ErrInvalidPath)
}

func TestFieldEquals(t *testing.T) {
	doc := json.RawMessage(`{"status":"pending","count":1}`)

	ok, err := FieldEquals(doc, "status", "pending")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = FieldEquals(doc, "status", "approved")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = FieldEquals(doc, "missing", "")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = FieldEquals(doc, "count", "1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = FieldEquals(json.RawMessage(`[1]`), "status", "pending")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestSplitPatch(t *testing.T) {
	set, removed := SplitPatch(Patch{"status": "approved", "notes": nil, "meetingLink": nil})

	assert.Equal(t, Patch{"status": "approved"}, set)
	assert.Equal(t, []string{"meetingLink", "notes"}, removed)

	set, removed = SplitPatch(Patch{})
	assert.Empty(t, set)
	assert.Empty(t, removed)
}
