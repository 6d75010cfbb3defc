package leads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// TableSink stores leads in Azure Table Storage, partitioned by month.
type TableSink struct {
	client *aztables.Client
	table  string
}

// NewTableSink connects to the table service and makes sure the leads table
// exists. http:// URLs are treated as a local Azurite emulator.
func NewTableSink(ctx context.Context, serviceURL, table string) (*TableSink, error) {
	if serviceURL == "" {
		return nil, errors.New("table service URL is required")
	}
	if table == "" {
		table = "leads"
	}

	var svc *aztables.ServiceClient
	if strings.HasPrefix(serviceURL, "http://") {
		slog.Info("using Azurite credentials for lead table")
		cred, err := aztables.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("creating shared key credential: %w", err)
		}
		svc, err = aztables.NewServiceClientWithSharedKey(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("creating table service client: %w", err)
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating default azure credential: %w", err)
		}
		svc, err = aztables.NewServiceClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("creating table service client: %w", err)
		}
	}

	if _, err := svc.CreateTable(ctx, table, nil); err != nil {
		var azErr *azcore.ResponseError
		if !errors.As(err, &azErr) || azErr.ErrorCode != "TableAlreadyExists" {
			return nil, fmt.Errorf("creating table %s: %w", table, err)
		}
	}

	return &TableSink{client: svc.NewClient(table), table: table}, nil
}

// Save implements Sink.
func (t *TableSink) Save(ctx context.Context, lead Lead) error {
	data, err := json.Marshal(tableEntity(lead))
	if err != nil {
		return fmt.Errorf("encoding lead entity: %w", err)
	}
	if _, err := t.client.AddEntity(ctx, data, nil); err != nil {
		return fmt.Errorf("adding lead to %s: %w", t.table, err)
	}
	return nil
}

// tableEntity flattens a lead into a table row. PartitionKey is the month of
// submission; RowKey is unique per email and instant.
func tableEntity(lead Lead) map[string]any {
	created := lead.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC()

	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(lead.Email))))
	rowKey := fmt.Sprintf("%d_%s", created.UnixNano(), hex.EncodeToString(h[:8]))

	return map[string]any{
		"PartitionKey":  created.Format("2006-01"),
		"RowKey":        rowKey,
		"Name":          lead.Name,
		"Email":         lead.Email,
		"Phone":         lead.Phone,
		"Company":       lead.Company,
		"Message":       lead.Message,
		"Bill":          lead.Summary.Bill,
		"Waste":         lead.Summary.Waste,
		"Shifts":        lead.Summary.Shifts,
		"Solar":         lead.Summary.Solar,
		"YearlySavings": lead.Summary.YearlySavings,
		"CreatedAt":     created.Format(time.RFC3339),
	}
}
