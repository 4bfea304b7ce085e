package directory

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapInsertErrDuplicateKey(t *testing.T) {
	err := mapInsertErr(mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestMapInsertErrOther(t *testing.T) {
	cause := errors.New("connection reset")
	err := mapInsertErr(cause)
	if errors.Is(err, ErrDuplicateUsername) {
		t.Fatal("unrelated error mapped to ErrDuplicateUsername")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}
