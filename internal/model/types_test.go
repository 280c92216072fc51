package model

import (
	"encoding/json"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: 121050})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 1210.50}`, string(out))

	var in struct {
		Total Money `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total": 1210.5}`), &in))
	assert.Equal(t, Money(121050), in.Total)

	require.NoError(t, json.Unmarshal([]byte(`{"total": "0.1"}`), &in))
	assert.Equal(t, Money(10), in.Total)

	assert.Error(t, json.Unmarshal([]byte(`{"total": "abc"}`), &in))
	assert.Equal(t, "-3.05", Money(-305).String())
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-09"`), &d))
	assert.Equal(t, "2026-03-09", d.String())
	assert.Equal(t, "Monday", d.Weekday())

	require.NoError(t, json.Unmarshal([]byte(`"2026-03-09T15:04:05Z"`), &d))
	assert.Equal(t, "2026-03-09", d.String())

	assert.Error(t, json.Unmarshal([]byte(`"09/03/2026"`), &d))

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-09"`, string(out))
}

func TestTimeSlotValidate(t *testing.T) {
	assert.NoError(t, TimeSlot{StartTime: "09:00", EndTime: "09:30"}.Validate())
	assert.Error(t, TimeSlot{StartTime: "09:30", EndTime: "09:00"}.Validate())
	assert.Error(t, TimeSlot{StartTime: "9am", EndTime: "10:00"}.Validate())
	assert.Error(t, TimeSlot{StartTime: "25:00", EndTime: "26:00"}.Validate())
}

func TestIdentifierFormats(t *testing.T) {
	assert.Equal(t, "APT000042", AppointmentNumber(42))
	assert.Equal(t, "RX000007", PrescriptionNumber(7))
	assert.Equal(t, "BILL-2026-000123", BillNumber(2026, 123))
	assert.Equal(t, "EMP00009", EmployeeID(9))
	assert.Equal(t, "bill-2026", BillCounter(2026))

	now := time.UnixMilli(1_700_000_123_456)
	id := PatientNumber(now, rand.New(rand.NewSource(1)))
	assert.Regexp(t, regexp.MustCompile(`^PAT123456\d{3}$`), id)
}

func TestJSONListScan(t *testing.T) {
	var l JSONList[string]
	require.NoError(t, l.Scan([]byte(`["penicillin","latex"]`)))
	assert.Equal(t, JSONList[string]{"penicillin", "latex"}, l)

	v, err := JSONList[string](nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestAppointmentStatusHolds(t *testing.T) {
	assert.True(t, AppointmentScheduled.Holds())
	assert.True(t, AppointmentNoShow.Holds())
	assert.False(t, AppointmentCancelled.Holds())
	assert.False(t, AppointmentCompleted.Holds())
}
