package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/di"
	iface "github.com/vip-mudancas/vip-cli/internal/service/interface"
)

func TestClientesListCommand_Run(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		mockList      *api.ClienteList
		mockError     error
		wantPage      api.Page
		wantOutput    []string
		wantNotOutput []string
		wantErr       bool
	}{
		{
			name: "lists clients in table format",
			args: []string{"clientes", "list"},
			mockList: &api.ClienteList{
				Clientes: []api.Record{
					{"id": "c-1", "nome": "Ana Souza", "email": "ana@x.com", "status": "novo"},
					{"id": "c-2", "nome": "Bruno Lima", "telefone": "11999990000", "status": "contatado"},
				},
				Page:    1,
				PerPage: 20,
			},
			wantPage:   api.DefaultPage,
			wantOutput: []string{"ID", "NOME", "c-1", "Ana Souza", "novo", "c-2", "Bruno Lima", "contatado", "Page 1"},
		},
		{
			name:       "passes pagination flags",
			args:       []string{"clientes", "list", "--page", "3", "--per-page", "5"},
			mockList:   &api.ClienteList{},
			wantPage:   api.Page{Page: 3, PerPage: 5},
			wantOutput: []string{"No clients found."},
		},
		{
			name: "outputs JSON format",
			args: []string{"clientes", "list", "-o", "json"},
			mockList: &api.ClienteList{
				Clientes: []api.Record{{"id": "c-9", "nome": "Carla"}},
				Page:     1,
				PerPage:  20,
			},
			wantPage:      api.DefaultPage,
			wantOutput:    []string{`"id": "c-9"`, `"per_page": 20`},
			wantNotOutput: []string{"NOME"},
		},
		{
			name:      "returns error when not logged in",
			args:      []string{"clientes", "list"},
			mockError: iface.ErrNotLoggedIn,
			wantPage:  api.DefaultPage,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPage api.Page
			mockClientes := &MockClienteService{
				ListClientesFunc: func(ctx context.Context, page api.Page) (*api.ClienteList, error) {
					gotPage = page
					return tt.mockList, tt.mockError
				},
			}
			container := di.NewContainerWithServices(mockServices(nil, mockClientes, nil, nil))

			output, err := execute(t, container, "", tt.args...)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if gotPage != tt.wantPage {
				t.Errorf("page = %+v, want %+v", gotPage, tt.wantPage)
			}
			if !tt.wantErr {
				checkOutput(t, output, tt.wantOutput, tt.wantNotOutput)
			}
		})
	}
}

func TestClientesGetCommand_Run(t *testing.T) {
	mockClientes := &MockClienteService{
		GetClienteFunc: func(ctx context.Context, id string) (api.Record, error) {
			if id != "c-1" {
				return nil, &api.APIError{StatusCode: 404, Message: "Cliente não encontrado", FromBackend: true}
			}
			return api.Record{"id": "c-1", "nome": "Ana Souza", "endereco": map[string]any{"cidade": "Campinas"}}, nil
		},
	}
	container := di.NewContainerWithServices(mockServices(nil, mockClientes, nil, nil))

	output, err := execute(t, container, "", "clientes", "get", "c-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	checkOutput(t, output, []string{"nome:", "Ana Souza", `{"cidade":"Campinas"}`}, nil)

	if _, err := execute(t, container, "", "clientes", "get", "missing"); err == nil {
		t.Error("expected error for a missing client")
	}

	if _, err := execute(t, container, "", "clientes", "get"); err == nil {
		t.Error("expected error without an ID")
	}
}

func TestClientesCreateCommand_Run(t *testing.T) {
	var got api.Record
	mockClientes := &MockClienteService{
		CreateClienteFunc: func(ctx context.Context, data api.Record) (api.Record, error) {
			got = data
			return api.Record{"message": "Cliente criado com sucesso", "id": "c-77"}, nil
		},
	}
	container := di.NewContainerWithServices(mockServices(nil, mockClientes, nil, nil))

	output, err := execute(t, container, "",
		"clientes", "create",
		"--data", `{"email":"ana@x.com","origem":"site"}`,
		"--set", "nome=Ana Souza",
		"--set", "origem=indicacao",
		"--set", "orcamento_estimado=3500")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got.String("nome") != "Ana Souza" || got.String("email") != "ana@x.com" {
		t.Errorf("unexpected data sent: %v", got)
	}
	if got.String("origem") != "indicacao" {
		t.Errorf("--set should override --data, got origem=%v", got["origem"])
	}
	if _, ok := got["orcamento_estimado"].(float64); !ok {
		t.Errorf("orcamento_estimado should stay numeric, got %T", got["orcamento_estimado"])
	}
	checkOutput(t, output, []string{`Client "Ana Souza" created (ID c-77)`}, nil)
}

func TestClientesUpdateCommand_Run(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantData   api.Record
		wantErrMsg string
	}{
		{
			name:     "sends only the given fields",
			args:     []string{"clientes", "update", "c-1", "--set", "telefone=11988887777"},
			wantData: api.Record{"telefone": float64(11988887777)},
		},
		{
			name:       "requires some data",
			args:       []string{"clientes", "update", "c-1"},
			wantErrMsg: "nothing to update",
		},
		{
			name:       "rejects malformed --set",
			args:       []string{"clientes", "update", "c-1", "--set", "telefone"},
			wantErrMsg: "expected key=value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got api.Record
			mockClientes := &MockClienteService{
				UpdateClienteFunc: func(ctx context.Context, id string, data api.Record) (api.Record, error) {
					got = data
					return api.Record{"message": "ok"}, nil
				},
			}
			container := di.NewContainerWithServices(mockServices(nil, mockClientes, nil, nil))

			_, err := execute(t, container, "", tt.args...)

			if tt.wantErrMsg != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrMsg) {
					t.Fatalf("error = %v, want %q", err, tt.wantErrMsg)
				}
				if got != nil {
					t.Error("service should not be called")
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(got) != len(tt.wantData) || got["telefone"] != tt.wantData["telefone"] {
				t.Errorf("data = %v, want %v", got, tt.wantData)
			}
		})
	}
}

func TestClientesStatusCommand_Run(t *testing.T) {
	var gotID, gotStatus, gotJust string
	mockClientes := &MockClienteService{
		UpdateClienteStatusFunc: func(ctx context.Context, id, status, justificativa string) (api.Record, error) {
			gotID, gotStatus, gotJust = id, status, justificativa
			return api.Record{"message": "ok"}, nil
		},
	}
	container := di.NewContainerWithServices(mockServices(nil, mockClientes, nil, nil))

	output, err := execute(t, container, "", "clientes", "status", "c-1", "perdido", "--justificativa", "preço")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gotID != "c-1" || gotStatus != "perdido" || gotJust != "preço" {
		t.Errorf("UpdateClienteStatus(%q, %q, %q)", gotID, gotStatus, gotJust)
	}
	checkOutput(t, output, []string{`Client c-1 is now "perdido"`}, nil)
}

func TestClientesDeleteCommand_Run(t *testing.T) {
	tests := []struct {
		name         string
		mockGetErr   error
		mockDelError error
		wantDeleted  bool
		wantOutput   []string
		wantErr      bool
	}{
		{
			name:        "deletes with --yes",
			wantDeleted: true,
			wantOutput:  []string{"Client c-1 deleted."},
		},
		{
			name:       "does not delete an unknown client",
			mockGetErr: &api.APIError{StatusCode: 404, Message: "Cliente não encontrado", FromBackend: true},
			wantErr:    true,
		},
		{
			name:         "returns error when delete fails",
			mockDelError: errors.New("delete failed"),
			wantDeleted:  true,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			mockClientes := &MockClienteService{
				GetClienteFunc: func(ctx context.Context, id string) (api.Record, error) {
					if tt.mockGetErr != nil {
						return nil, tt.mockGetErr
					}
					return api.Record{"id": id, "nome": "Ana"}, nil
				},
				DeleteClienteFunc: func(ctx context.Context, id string) error {
					deleted = true
					return tt.mockDelError
				},
			}
			container := di.NewContainerWithServices(mockServices(nil, mockClientes, nil, nil))

			output, err := execute(t, container, "", "clientes", "delete", "c-1", "--yes")

			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDeleted)
			}
			checkOutput(t, output, tt.wantOutput, nil)
		})
	}
}
