package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/di"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
)

func TestProfileSetCommand_Run(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		updateErr  error
		wantUser   api.User
		wantOutput []string
		wantErrMsg string
	}{
		{
			name:       "merges fields into the stored profile",
			args:       []string{"profile", "set", "name=Ana Paula", "ramal=204"},
			wantUser:   api.User{"id": "1", "name": "Ana Paula", "ramal": float64(204)},
			wantOutput: []string{"Local profile updated"},
		},
		{
			name:       "outputs the profile as JSON",
			args:       []string{"profile", "set", "role=admin", "-o", "json"},
			wantUser:   api.User{"id": "1", "name": "Test User", "role": "admin"},
			wantOutput: []string{`"role": "admin"`, `"name": "Test User"`},
		},
		{
			name:       "rejects a malformed assignment",
			args:       []string{"profile", "set", "name"},
			wantErrMsg: "expected key=value",
		},
		{
			name:       "requires a session",
			args:       []string{"profile", "set", "name=X"},
			updateErr:  iface.ErrNotLoggedIn,
			wantErrMsg: "not logged in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got api.User
			mockAuth := &MockAuthService{
				UpdateProfileFunc: func(ctx context.Context, user api.User) error {
					if tt.updateErr != nil {
						return tt.updateErr
					}
					got = user
					return nil
				},
			}
			container := di.NewContainerWithServices(mockServices(mockAuth, nil, nil, nil))

			output, err := execute(t, container, "", tt.args...)

			if tt.wantErrMsg != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrMsg) {
					t.Fatalf("error = %v, want %q", err, tt.wantErrMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(got) != len(tt.wantUser) {
				t.Fatalf("user = %v, want %v", got, tt.wantUser)
			}
			for k, v := range tt.wantUser {
				if got[k] != v {
					t.Errorf("user[%s] = %#v, want %#v", k, got[k], v)
				}
			}
			checkOutput(t, output, tt.wantOutput, nil)
		})
	}
}
