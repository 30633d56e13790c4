package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"hospital-recruitment-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReplacer struct {
	gotID  string
	gotDoc domain.RawApplicantRecord
	stored domain.RawApplicantRecord
	err    error
}

func (s *stubReplacer) Replace(_ context.Context, id string, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error) {
	s.gotID, s.gotDoc = id, doc
	return s.stored, s.err
}

func TestRunReplace(t *testing.T) {
	t.Run("Prints the stored record normalized", func(t *testing.T) {
		r := &stubReplacer{stored: domain.RawApplicantRecord{
			"id":              "a-1",
			"appliedPosition": "พยาบาลวิชาชีพ",
			"firstName":       "สมชาย",
			"status":          "approved",
		}}
		var out bytes.Buffer

		err := runReplace(context.Background(), r, "a-1",
			strings.NewReader(`{"firstName":"สมชาย","appliedPosition":"พยาบาลวิชาชีพ"}`), renderJSON, &out)

		require.NoError(t, err)
		assert.Equal(t, "a-1", r.gotID)
		assert.Equal(t, "สมชาย", r.gotDoc["firstName"])

		var got domain.NormalizedApplicant
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "a-1", got.ID)
		assert.Equal(t, "พยาบาลวิชาชีพ", got.AppliedPosition)
		assert.Equal(t, domain.StatusBucketApproved, got.Status.Code)
		assert.NotNil(t, got.Education)
	})

	t.Run("Rejects a document that is not an object", func(t *testing.T) {
		r := &stubReplacer{}

		err := runReplace(context.Background(), r, "a-1", strings.NewReader(`null`), renderJSON, &bytes.Buffer{})

		assert.Error(t, err)
		assert.Empty(t, r.gotID)
	})

	t.Run("Upstream failure is returned", func(t *testing.T) {
		r := &stubReplacer{err: errors.New("404 not found")}

		err := runReplace(context.Background(), r, "gone", strings.NewReader(`{}`), renderJSON, &bytes.Buffer{})

		assert.EqualError(t, err, "404 not found")
	})
}
