package postgres

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Christopher-Hayes/active-window/internal/logging"
)

// TestValidateSession tests session validation logic
func TestValidateSession(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{
			name: "valid session",
			session: Session{
				Start:    now.Add(-10 * time.Minute),
				End:      now,
				Name:     "firefox",
				PID:      4242,
				Extents:  [4]int{0, 0, 1920, 1080},
				Duration: 10 * time.Minute,
			},
			wantErr: false,
		},
		{
			name: "missing name",
			session: Session{
				Start:    now.Add(-10 * time.Minute),
				End:      now,
				Duration: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "zero start time",
			session: Session{
				End:      now,
				Name:     "firefox",
				Duration: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "zero end time",
			session: Session{
				Start:    now,
				Name:     "firefox",
				Duration: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "end before start",
			session: Session{
				Start:    now,
				End:      now.Add(-10 * time.Minute),
				Name:     "firefox",
				Duration: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "negative duration",
			session: Session{
				Start:    now.Add(-10 * time.Minute),
				End:      now,
				Name:     "firefox",
				Duration: -10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "duration mismatch",
			session: Session{
				Start:    now.Add(-10 * time.Minute),
				End:      now,
				Name:     "firefox",
				Duration: 5 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "duration within rounding tolerance",
			session: Session{
				Start:    now.Add(-10 * time.Minute),
				End:      now,
				Name:     "firefox",
				Duration: 10*time.Minute + 500*time.Millisecond,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSession(tt.session)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewClientRequiresConnectionString(t *testing.T) {
	t.Setenv("POSTGRES_CONNECTION_STRING", "")
	if _, err := NewClient(""); err == nil {
		t.Error("expected error without a connection string")
	}
}

func TestSubmitSessionsRejectsInvalidWithoutDatabase(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stderr)

	client := &Client{}
	stored, failed := client.SubmitSessions([]Session{{Name: ""}})
	if stored != 0 || failed != 1 {
		t.Errorf("SubmitSessions() = %d stored, %d failed; want 0, 1", stored, failed)
	}
	if !strings.Contains(buf.String(), "[POSTGRES] Failed to store session") {
		t.Errorf("failure not reported through the logger: %q", buf.String())
	}

	stored, failed = client.SubmitSessions(nil)
	if stored != 0 || failed != 0 {
		t.Errorf("SubmitSessions(nil) = %d, %d", stored, failed)
	}
}

// TestIntegration exercises the real database when POSTGRES_TEST_CONNECTION_STRING is set
func TestIntegration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_CONNECTION_STRING not set")
	}

	client, err := NewClient(dsn)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	end := time.Now().Truncate(time.Second)
	session := Session{
		Start:    end.Add(-2 * time.Minute),
		End:      end,
		Name:     "integration-test",
		PID:      1,
		Extents:  [4]int{1, 2, 3, 4},
		Duration: 2 * time.Minute,
	}
	if err := client.SubmitSession(session); err != nil {
		t.Fatalf("SubmitSession() error = %v", err)
	}

	recent, err := client.GetRecentSessions(50)
	if err != nil {
		t.Fatalf("GetRecentSessions() error = %v", err)
	}
	for _, s := range recent {
		if s.Name == "integration-test" && s.Extents == session.Extents {
			return
		}
	}
	t.Error("stored session not returned by GetRecentSessions")
}
