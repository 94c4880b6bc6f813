package models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type RecordSuite struct {
	suite.Suite
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordSuite))
}

// TestNewVerificationRecord verifies construction and field validation order.
func (s *RecordSuite) TestNewVerificationRecord() {
	s.Run("builds an unverified record", func() {
		record, err := NewVerificationRecord("ABC Construction", "BUS12345", 100)
		s.Require().NoError(err)
		s.Equal(VerificationRecord{
			BusinessName:     "ABC Construction",
			BusinessID:       "BUS12345",
			IsVerified:       false,
			VerificationDate: 0,
			LastUpdated:      100,
		}, record)
	})

	s.Run("rejects empty business name", func() {
		_, err := NewVerificationRecord("", "BUS12345", 100)
		s.Require().ErrorIs(err, ErrEmptyBusinessName)
	})

	s.Run("rejects empty business id", func() {
		_, err := NewVerificationRecord("ABC Construction", "", 100)
		s.Require().ErrorIs(err, ErrEmptyBusinessID)
	})

	s.Run("checks name before id", func() {
		_, err := NewVerificationRecord("", "", 100)
		s.Require().ErrorIs(err, ErrEmptyBusinessName)
	})

	s.Run("accepts whitespace-only values", func() {
		_, err := NewVerificationRecord(" ", " ", 100)
		s.NoError(err)
	})
}

// TestTransitions verifies approval and revocation effects on the timestamps.
func (s *RecordSuite) TestTransitions() {
	s.Run("approval sets verification date and last updated", func() {
		record, err := NewVerificationRecord("ABC Construction", "BUS12345", 90)
		s.Require().NoError(err)

		record.ApplyApproval(100)

		s.True(record.IsVerified)
		s.Equal(Ordinal(100), record.VerificationDate)
		s.Equal(Ordinal(100), record.LastUpdated)
		s.Equal("ABC Construction", record.BusinessName)
		s.Equal("BUS12345", record.BusinessID)
	})

	s.Run("revocation keeps the last approval date", func() {
		record, err := NewVerificationRecord("ABC Construction", "BUS12345", 90)
		s.Require().NoError(err)
		record.ApplyApproval(100)

		record.ApplyRevocation(120)

		s.False(record.IsVerified)
		s.Equal(Ordinal(100), record.VerificationDate)
		s.Equal(Ordinal(120), record.LastUpdated)
	})

	s.Run("revoking a never-approved record leaves the date at zero", func() {
		record, err := NewVerificationRecord("ABC Construction", "BUS12345", 90)
		s.Require().NoError(err)

		record.ApplyRevocation(95)

		s.False(record.IsVerified)
		s.Equal(Ordinal(0), record.VerificationDate)
		s.Equal(Ordinal(95), record.LastUpdated)
	})
}

func (s *RecordSuite) TestResultCodeOf() {
	cases := []struct {
		err  error
		want ResultCode
	}{
		{ErrEmptyBusinessName, ResultEmptyBusinessName},
		{ErrEmptyBusinessID, ResultEmptyBusinessID},
		{ErrNotAuthorized, ResultNotAuthorized},
		{fmt.Errorf("approve: %w", ErrRenterNotFound), ResultRenterNotFound},
	}
	for _, tc := range cases {
		code, ok := ResultCodeOf(tc.err)
		s.True(ok)
		s.Equal(tc.want, code)
	}

	_, ok := ResultCodeOf(fmt.Errorf("connection reset"))
	s.False(ok)
}

func (s *RecordSuite) TestParseIdentity() {
	s.Run("accepts an address", func() {
		id, err := ParseIdentity("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
		s.Require().NoError(err)
		s.Equal(Identity("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"), id)
	})

	s.Run("rejects empty", func() {
		_, err := ParseIdentity("")
		s.Error(err)
	})

	s.Run("rejects whitespace", func() {
		_, err := ParseIdentity("ST1 PQ")
		s.Error(err)
	})

	s.Run("rejects oversized", func() {
		_, err := ParseIdentity(strings.Repeat("a", maxIdentityLength+1))
		s.Error(err)
	})
}
