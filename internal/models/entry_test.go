package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseNumber(t *testing.T) {
	cases := []struct {
		name     string
		fullName string
		seq      int
		want     string
	}{
		{"single word", "Surgery", 1, "SURGERY-1"},
		{"spaces become hyphens", "Intro To Surgery", 1, "INTRO-TO-SURGERY-1"},
		{"later sequence", "Intro To Surgery", 5, "INTRO-TO-SURGERY-5"},
		{"whitespace runs collapse", "Oral  \t Pathology", 2, "ORAL-PATHOLOGY-2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CaseNumber(tc.fullName, tc.seq))
		})
	}
}

func TestNewEntryRequestValidation(t *testing.T) {
	valid := NewEntryRequest{
		MoodleID:          42,
		CourseID:          7,
		RoleInTask:        "leader",
		ConsentForm:       "yes",
		WorkCompletedDate: "2024-03-01",
	}
	assert.NoError(t, valid.Validate())

	t.Run("missing completion date", func(t *testing.T) {
		req := valid
		req.WorkCompletedDate = ""
		assert.Error(t, req.Validate())
	})

	t.Run("missing moodle id", func(t *testing.T) {
		req := valid
		req.MoodleID = 0
		assert.Error(t, req.Validate())
	})

	t.Run("unknown role", func(t *testing.T) {
		req := valid
		req.RoleInTask = "spectator"
		assert.Error(t, req.Validate())
	})

	t.Run("bad date format", func(t *testing.T) {
		req := valid
		req.WorkCompletedDate = "01/03/2024"
		assert.Error(t, req.Validate())
	})
}

func TestStatusRequestValidation(t *testing.T) {
	assert.NoError(t, (&StatusRequest{EntryID: 1, Status: StatusSubmitted}).Validate())
	assert.NoError(t, (&StatusRequest{EntryID: 1, Status: StatusGraded}).Validate())
	assert.Error(t, (&StatusRequest{EntryID: 1, Status: "archived"}).Validate())
	assert.Error(t, (&StatusRequest{Status: StatusGraded}).Validate())
}
