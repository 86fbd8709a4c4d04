package structured

import (
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"fieldlens/internal/domain"
	"fieldlens/internal/normalize"
	"fieldlens/internal/typeconfig"
)

// MapBlocks converts a Textract block list into an ExtractionResult: QUERY
// answers become fields (confidence rescaled from 0-100), TABLE grids become
// line items or transactions depending on the type's table rules.
func MapBlocks(blocks []types.Block, tc *typeconfig.DocumentTypeConfig) *domain.ExtractionResult {
	result := domain.NewExtractionResult(domain.LayerStructuredQuery)

	byID := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		if b.Id != nil {
			byID[*b.Id] = b
		}
	}

	for _, b := range blocks {
		switch b.BlockType {
		case types.BlockTypeQuery:
			if fv, ok := queryField(b, byID, tc); ok {
				// Keep the more confident answer when a query repeats
				// across pages.
				if existing, dup := result.Fields[fv.Name]; !dup || fv.Confidence > existing.Confidence {
					result.Fields[fv.Name] = fv
				}
			}
		case types.BlockTypeTable:
			grid := tableGrid(b, byID)
			if len(grid) == 0 {
				continue
			}
			if tc.TableRules.Transactions {
				result.Transactions = append(result.Transactions, TransactionsFromGrid(grid)...)
			} else {
				result.LineItems = append(result.LineItems, LineItemsFromGrid(grid, tc.TableRules)...)
			}
		}
	}

	return result
}

// queryField resolves a QUERY block's answer into a FieldValue via its
// ANSWER relationship. Multiple answers keep the most confident one.
func queryField(b types.Block, byID map[string]types.Block, tc *typeconfig.DocumentTypeConfig) (domain.FieldValue, bool) {
	if b.Query == nil || b.Query.Alias == nil {
		return domain.FieldValue{}, false
	}
	alias := *b.Query.Alias

	var best *types.Block
	for _, rel := range b.Relationships {
		if rel.Type != types.RelationshipTypeAnswer {
			continue
		}
		for _, id := range rel.Ids {
			answer, ok := byID[id]
			if !ok || answer.BlockType != types.BlockTypeQueryResult {
				continue
			}
			if best == nil || confOf(answer) > confOf(*best) {
				a := answer
				best = &a
			}
		}
	}
	if best == nil || best.Text == nil {
		return domain.FieldValue{}, false
	}

	fv := domain.FieldValue{
		Name:       alias,
		Raw:        *best.Text,
		Kind:       tc.FieldKind(alias),
		Confidence: confOf(*best) / 100.0,
		Source:     domain.LayerStructuredQuery,
		Region:     regionOf(*best),
	}
	normalize.Apply(&fv)
	return fv, true
}

func confOf(b types.Block) float64 {
	if b.Confidence == nil {
		return 0
	}
	return float64(*b.Confidence)
}

func regionOf(b types.Block) *domain.BoundingRegion {
	if b.Geometry == nil || b.Geometry.BoundingBox == nil {
		return nil
	}
	page := 1
	if b.Page != nil {
		page = int(*b.Page)
	}
	box := b.Geometry.BoundingBox
	return &domain.BoundingRegion{
		Page:   page,
		Left:   float64(box.Left),
		Top:    float64(box.Top),
		Width:  float64(box.Width),
		Height: float64(box.Height),
	}
}

// tableGrid reconstructs a TABLE block's cells into a row-major grid of
// cell text.
func tableGrid(table types.Block, byID map[string]types.Block) [][]string {
	type cell struct {
		row, col int
		text     string
	}
	var cells []cell
	maxRow := 0

	for _, rel := range table.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			b, ok := byID[id]
			if !ok || b.BlockType != types.BlockTypeCell || b.RowIndex == nil || b.ColumnIndex == nil {
				continue
			}
			c := cell{row: int(*b.RowIndex), col: int(*b.ColumnIndex), text: cellText(b, byID)}
			if c.row > maxRow {
				maxRow = c.row
			}
			cells = append(cells, c)
		}
	}
	if maxRow == 0 {
		return nil
	}

	rows := make(map[int][]cell, maxRow)
	for _, c := range cells {
		rows[c.row] = append(rows[c.row], c)
	}

	grid := make([][]string, 0, maxRow)
	for r := 1; r <= maxRow; r++ {
		row := rows[r]
		sort.Slice(row, func(i, j int) bool { return row[i].col < row[j].col })
		texts := make([]string, 0, len(row))
		for _, c := range row {
			texts = append(texts, c.text)
		}
		grid = append(grid, texts)
	}
	return grid
}

// cellText joins a CELL block's child WORD blocks.
func cellText(cell types.Block, byID map[string]types.Block) string {
	var words []string
	for _, rel := range cell.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			b, ok := byID[id]
			if !ok || b.BlockType != types.BlockTypeWord || b.Text == nil {
				continue
			}
			words = append(words, *b.Text)
		}
	}
	return strings.Join(words, " ")
}
