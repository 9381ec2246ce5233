package mapping

import (
	"fmt"
	"sort"

	"pricebook-backend/internal/domains/priceimport/model"
)

// Workspace là trạng thái chỉnh sửa phía client: mapping + các cột bị ẩn
type Workspace struct {
	Mapping *model.ImportMapping
	Hidden  map[int]bool
}

func NewWorkspace(m *model.ImportMapping, hidden []int) *Workspace {
	if m == nil {
		m = model.NewImportMapping()
	}
	w := &Workspace{Mapping: m.Clone(), Hidden: make(map[int]bool, len(hidden))}
	for _, c := range hidden {
		w.Hidden[c] = true
	}
	return w
}

// Assign map key vào col; cột được hiện lại nếu đang ẩn
func (w *Workspace) Assign(key model.FieldKey, col int) error {
	if err := w.Mapping.Assign(key, col); err != nil {
		return err
	}
	delete(w.Hidden, col)
	return nil
}

// HideColumn gỡ mọi mapping trỏ vào col rồi ẩn cột
func (w *Workspace) HideColumn(col int) {
	w.Mapping.ClearColumn(col)
	w.Hidden[col] = true
}

func (w *Workspace) RestoreColumn(col int) {
	delete(w.Hidden, col)
}

func (w *Workspace) HiddenColumns() []int {
	out := make([]int, 0, len(w.Hidden))
	for c := range w.Hidden {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Edit áp dụng một thao tác lên mapping của client và trả về trạng thái mới
func Edit(req model.MappingEditRequest) (*model.MappingEditResponse, error) {
	w := NewWorkspace(req.Mapping, req.HiddenColumns)

	var err error
	switch req.Op {
	case model.OpAssign:
		err = w.Assign(req.FieldKey, *req.Column)
	case model.OpUnmap:
		err = w.Mapping.Unmap(req.FieldKey)
	case model.OpClear:
		if _, ok := model.ParseFieldKey(string(req.FieldKey)); !ok {
			err = fmt.Errorf("unknown field key %q", req.FieldKey)
			break
		}
		w.Mapping.Clear(req.FieldKey)
	case model.OpSetPairCount:
		err = w.Mapping.SetPairCount(req.Count)
	case model.OpHideColumn:
		w.HideColumn(*req.Column)
	case model.OpRestoreColumn:
		w.RestoreColumn(*req.Column)
	default:
		err = fmt.Errorf("unknown mapping op %q", req.Op)
	}
	if err != nil {
		return nil, &model.MappingError{Messages: []string{err.Error()}}
	}

	return &model.MappingEditResponse{
		Mapping:       w.Mapping,
		PairCount:     w.Mapping.PairCount(),
		HiddenColumns: w.HiddenColumns(),
	}, nil
}

// EditOverrides áp dụng thao tác lên overrides phía client; trả về bản đã sửa
func EditOverrides(req model.OverridesEditRequest) (*model.Overrides, error) {
	if _, ok := model.ParseFieldKey(string(req.FieldKey)); !ok {
		return nil, &model.MappingError{Messages: []string{fmt.Sprintf("unknown field key %q", req.FieldKey)}}
	}

	o := req.Overrides
	switch req.Op {
	case model.OpApplyToAll:
		o.ApplyToAll(req.FieldKey, req.Value, req.Rows)
	default:
		return nil, &model.MappingError{Messages: []string{fmt.Sprintf("unknown overrides op %q", req.Op)}}
	}
	return &o, nil
}
