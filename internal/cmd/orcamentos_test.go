package cmd

import (
	"context"
	"testing"

	"github.com/vip-mudancas/vip-cli/internal/api"
	"github.com/vip-mudancas/vip-cli/internal/di"
)

func TestOrcamentosListCommand_Run(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCall   string
		wantArg    string
		wantOutput []string
		wantErr    bool
	}{
		{
			name:       "lists a page filtered by status",
			args:       []string{"orcamentos", "list", "--status", "pendente"},
			wantCall:   "list",
			wantArg:    "pendente",
			wantOutput: []string{"CLIENTE_NOME", "o-1", "Ana", "residencial", "pendente"},
		},
		{
			name:       "lists the quotes of a seller",
			args:       []string{"orcamentos", "list", "--seller", "u-7"},
			wantCall:   "seller",
			wantArg:    "u-7",
			wantOutput: []string{"o-2", "Bruno"},
		},
		{
			name:       "lists the quotes of a client as JSON",
			args:       []string{"orcamentos", "list", "--client", "c-3", "-o", "json"},
			wantCall:   "client",
			wantArg:    "c-3",
			wantOutput: []string{"[]"},
		},
		{
			name:    "rejects combined filters",
			args:    []string{"orcamentos", "list", "--seller", "u-7", "--client", "c-3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCall, gotArg string
			mockOrcamentos := &MockOrcamentoService{
				ListOrcamentosFunc: func(ctx context.Context, page api.Page, status string) (*api.OrcamentoList, error) {
					gotCall, gotArg = "list", status
					return &api.OrcamentoList{Orcamentos: []api.Record{
						{"id": "o-1", "cliente_nome": "Ana", "tipo_mudanca": "residencial", "status": "pendente"},
					}}, nil
				},
				OrcamentosBySellerFunc: func(ctx context.Context, sellerID string) ([]api.Record, error) {
					gotCall, gotArg = "seller", sellerID
					return []api.Record{{"id": "o-2", "cliente_nome": "Bruno"}}, nil
				},
				OrcamentosByClientFunc: func(ctx context.Context, clientID string) ([]api.Record, error) {
					gotCall, gotArg = "client", clientID
					return nil, nil
				},
			}
			container := di.NewContainerWithServices(mockServices(nil, nil, mockOrcamentos, nil))

			output, err := execute(t, container, "", tt.args...)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if gotCall != tt.wantCall || gotArg != tt.wantArg {
				t.Errorf("called %s(%q), want %s(%q)", gotCall, gotArg, tt.wantCall, tt.wantArg)
			}
			checkOutput(t, output, tt.wantOutput, nil)
		})
	}
}

func TestOrcamentosCreateCommand_Run(t *testing.T) {
	var got api.Record
	mockOrcamentos := &MockOrcamentoService{
		CreateOrcamentoFunc: func(ctx context.Context, data api.Record) (api.Record, error) {
			got = data
			return api.Record{"id": "o-9"}, nil
		},
	}
	container := di.NewContainerWithServices(mockServices(nil, nil, mockOrcamentos, nil))

	output, err := execute(t, container, "",
		"orcamentos", "create",
		"--set", "cliente_nome=Ana",
		"--set", "cliente_email=ana@x.com",
		"--set", "tipo_mudanca=comercial",
		"--set", "valor_total=2400")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.String("tipo_mudanca") != "comercial" || got.String("valor_total") != "2400" {
		t.Errorf("unexpected data sent: %v", got)
	}
	checkOutput(t, output, []string{`Quote for "Ana" created (ID o-9)`}, nil)
}

func TestOrcamentosDecisionCommands_Run(t *testing.T) {
	var approved, rejected, motivo, deleted string
	mockOrcamentos := &MockOrcamentoService{
		ApproveOrcamentoFunc: func(ctx context.Context, id string) (api.Record, error) {
			approved = id
			return api.Record{"message": "Orçamento aprovado"}, nil
		},
		RejectOrcamentoFunc: func(ctx context.Context, id, m string) (api.Record, error) {
			rejected, motivo = id, m
			return api.Record{"message": "Orçamento rejeitado"}, nil
		},
		DeleteOrcamentoFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
		OrcamentoStatsFunc: func(ctx context.Context) (api.Record, error) {
			return api.Record{"total": 12, "aprovados": 5}, nil
		},
	}
	container := di.NewContainerWithServices(mockServices(nil, nil, mockOrcamentos, nil))

	tests := []struct {
		args       []string
		wantOutput []string
	}{
		{args: []string{"orcamentos", "approve", "o-1"}, wantOutput: []string{"Quote o-1 approved"}},
		{args: []string{"orcamentos", "reject", "o-2", "--motivo", "cliente desistiu"}, wantOutput: []string{"Quote o-2 rejected"}},
		{args: []string{"orcamentos", "delete", "o-3", "-y"}, wantOutput: []string{"Quote o-3 deleted."}},
		{args: []string{"orcamentos", "stats"}, wantOutput: []string{"aprovados:", "5", "total:", "12"}},
	}
	for _, tt := range tests {
		output, err := execute(t, container, "", tt.args...)
		if err != nil {
			t.Fatalf("%v: error = %v", tt.args, err)
		}
		checkOutput(t, output, tt.wantOutput, nil)
	}

	if approved != "o-1" || rejected != "o-2" || motivo != "cliente desistiu" || deleted != "o-3" {
		t.Errorf("approved=%q rejected=%q motivo=%q deleted=%q", approved, rejected, motivo, deleted)
	}
}
