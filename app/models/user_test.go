package models

import "testing"

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("Ada Example", "ada@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != ROLE_USER || u.Status != STATUS_ACTIVE {
		t.Errorf("unexpected defaults: role=%s status=%s", u.Role, u.Status)
	}
	if u.Password == "s3cret-pass" {
		t.Error("password stored in plain text")
	}
	if !CheckPasswordHash("s3cret-pass", u.Password) {
		t.Error("password does not verify against its hash")
	}
	if CheckPasswordHash("wrong", u.Password) {
		t.Error("wrong password verified")
	}
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short name", "ab", "ada@example.com", "s3cret-pass"},
		{"bad email", "Ada Example", "not-an-email", "s3cret-pass"},
		{"short password", "Ada Example", "ada@example.com", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreateUser(tt.username, tt.email, tt.password); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSubscriptionIsOpen(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{SubscriptionStatusIncomplete, true},
		{SubscriptionStatusActive, true},
		{SubscriptionStatusPastDue, true},
		{SubscriptionStatusCanceled, false},
		{SubscriptionStatusUnpaid, false},
	}

	for _, tt := range tests {
		s := &BillingSubscription{Status: tt.status}
		if got := s.IsOpen(); got != tt.want {
			t.Errorf("IsOpen(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
