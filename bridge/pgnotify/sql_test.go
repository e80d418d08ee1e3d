package pgnotify

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/youssefsiam38/volumetric"
)

var notifyQuery = regexp.QuoteMeta("SELECT pg_notify($1, $2)")

// phraseArg matches a NOTIFY payload carrying the given phrase text.
type phraseArg struct {
	text string
}

func (a phraseArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	var p volumetric.ActionPhrase
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return false
	}
	return p.Text == a.text
}

func TestSQLNotifier_Notify(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectExec(notifyQuery).
		WithArgs(ChannelActionPhrase, phraseArg{text: "Show me the Pro plan"}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	bridge := NewBridge(NewSQLNotifier(db), "")
	phrase := volumetric.NewActionPhrase("Show me the Pro plan")
	phrase.SessionID = "s1"
	if err := bridge.Notify(context.Background(), phrase); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLNotifier_NotifyError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectExec(notifyQuery).
		WithArgs("agent_inbox", sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset by peer"))

	bridge := NewBridge(NewSQLNotifier(db), "agent_inbox")
	err = bridge.Notify(context.Background(), volumetric.NewActionPhrase("Compare the plans"))
	if !errors.Is(err, volumetric.ErrBridgeUnavailable) {
		t.Errorf("Notify() error = %v, want ErrBridgeUnavailable", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
