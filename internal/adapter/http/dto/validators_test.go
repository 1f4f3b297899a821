package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := CreateListingRequest{
		Title:       "  Pottery for Beginners  ",
		Type:        " workshop ",
		Description: " Learn wheel throwing ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Pottery for Beginners", req.Title)
	assert.Equal(t, "workshop", req.Type)
	assert.Equal(t, "Learn wheel throwing", req.Description)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := ReviewRequest{
		Rating: 5,
		Body:   "great class <script>alert('x')</script> would recommend",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Body, "&lt;script&gt;")
	assert.NotContains(t, req.Body, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	parent := "  e7a3d2f8-aaaa-bbbb-cccc-000000000001  "
	req := DiscussionRequest{
		Body:     "is this suitable for kids?",
		ParentID: &parent,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "e7a3d2f8-aaaa-bbbb-cccc-000000000001", *req.ParentID)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := DiscussionRequest{
		Body:     "hello",
		ParentID: nil,
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.ParentID)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom validator tests ---

func TestYMDDate_Valid(t *testing.T) {
	cases := []string{
		"2026-01-15",
		"2025-12-31",
		"2026-09-01",
	}
	for _, tc := range cases {
		assert.True(t, dateRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestYMDDate_Invalid(t *testing.T) {
	cases := []string{
		"15-01-2026",
		"2026/01/15",
		"2026-1-5",
		"",
		"tomorrow",
	}
	for _, tc := range cases {
		assert.False(t, dateRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestNewListResponse_PageMath(t *testing.T) {
	r := NewListResponse([]string{"a"}, 101, 2, 20)
	assert.Equal(t, int64(101), r.Total)
	assert.Equal(t, 6, r.TotalPages)
	assert.Equal(t, 2, r.Page)

	empty := NewListResponse(nil, 0, 1, 20)
	assert.Equal(t, 0, empty.TotalPages)
}
