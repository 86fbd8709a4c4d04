package typeconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldlens/internal/domain"
	"fieldlens/internal/typeconfig"
)

func TestLoadStore_BuiltinsOnly(t *testing.T) {
	store, err := typeconfig.LoadStore("")

	require.NoError(t, err)
	assert.Len(t, store.All(), 6)
	assert.NotNil(t, store.Get(domain.TypeWageStatement))
	assert.NotNil(t, store.Get(domain.TypeUnknown))
	assert.Nil(t, store.Get(domain.TypeID("invoice")))
}

func TestLoadStore_BuiltinPriorityOrder(t *testing.T) {
	store, err := typeconfig.LoadStore("")
	require.NoError(t, err)

	all := store.All()
	assert.Equal(t, domain.TypeWageStatement, all[0].ID)
	assert.Equal(t, domain.TypeUnknown, all[len(all)-1].ID)
}

func TestLoadStore_OverlayReplacesBuiltinInPlace(t *testing.T) {
	dir := t.TempDir()
	overlay := `
id: receipt
display_name: Custom Receipt
keywords:
  - term: receipt
    weight: 5
fields:
  - name: total
    kind: money
required_fields:
  - total
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "receipt.yaml"), []byte(overlay), 0o644))

	store, err := typeconfig.LoadStore(dir)
	require.NoError(t, err)

	assert.Len(t, store.All(), 6)
	got := store.Get(domain.TypeReceipt)
	require.NotNil(t, got)
	assert.Equal(t, "Custom Receipt", got.DisplayName)
	assert.Equal(t, []string{"total"}, got.RequiredFields)
}

func TestLoadStore_OverlayAppendsNewType(t *testing.T) {
	dir := t.TempDir()
	overlay := `
id: utility_bill
display_name: Utility Bill
keywords:
  - term: kwh
    weight: 3
fields:
  - name: amount_due
    kind: money
required_fields:
  - amount_due
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "utility_bill.yaml"), []byte(overlay), 0o644))

	store, err := typeconfig.LoadStore(dir)
	require.NoError(t, err)

	assert.Len(t, store.All(), 7)
	got := store.Get(domain.TypeID("utility_bill"))
	require.NotNil(t, got)
	assert.Equal(t, domain.KindMoney, got.FieldKind("amount_due"))
}

func TestLoadStore_BadPatternRuleFails(t *testing.T) {
	dir := t.TempDir()
	overlay := `
id: broken
fields:
  - name: total
    kind: money
pattern_rules:
  - field: total
    expr: "(["
    group: 1
    confidence: 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(overlay), 0o644))

	_, err := typeconfig.LoadStore(dir)
	assert.Error(t, err)
}

func TestNewStore_RejectsUndeclaredRequiredField(t *testing.T) {
	_, err := typeconfig.NewStore(&typeconfig.DocumentTypeConfig{
		ID:             domain.TypeReceipt,
		RequiredFields: []string{"ghost"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestNewStore_RejectsDuplicateIDs(t *testing.T) {
	_, err := typeconfig.NewStore(
		&typeconfig.DocumentTypeConfig{ID: domain.TypeReceipt},
		&typeconfig.DocumentTypeConfig{ID: domain.TypeReceipt},
	)

	assert.Error(t, err)
}

func TestBuiltins_AllCompile(t *testing.T) {
	_, err := typeconfig.NewStore(typeconfig.Builtins()...)
	assert.NoError(t, err)
}
