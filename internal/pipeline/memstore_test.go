package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"garment-erp/internal/storage"
)

// memState holds the pipeline tables of memStore. Fields are exported so a
// transaction snapshot is a JSON round trip.
type memState struct {
	NextID         int64
	Seqs           map[string]int64
	Users          map[int64]string
	InactiveUsers  map[int64]bool
	LotRows        []storage.Lot
	AssignmentRows map[storage.Stage][]storage.Assignment
	ProductionRows map[storage.Stage][]storage.Production
	RewashRows     []storage.Rewash
	DispatchRows   []storage.Dispatch
}

// memStore is an in-memory Store. Transactions run one at a time and roll
// back to a snapshot when fn fails.
type memStore struct {
	*memState
	txMu sync.Mutex
	// failOn makes the named mutation return failErr.
	failOn  string
	failErr error
}

var (
	_ Store = (*memStore)(nil)
	_ Tx    = (*memStore)(nil)
)

func newMemStore(users map[int64]string) *memStore {
	return &memStore{memState: &memState{
		Seqs:           map[string]int64{},
		Users:          users,
		InactiveUsers:  map[int64]bool{},
		AssignmentRows: map[storage.Stage][]storage.Assignment{},
		ProductionRows: map[storage.Stage][]storage.Production{},
	}}
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	raw, err := json.Marshal(m.memState)
	if err != nil {
		return err
	}

	if err := fn(m); err != nil {
		var snap memState
		if uerr := json.Unmarshal(raw, &snap); uerr != nil {
			return uerr
		}
		*m.memState = snap
		return err
	}
	return nil
}

func (m *memStore) id() int64 {
	m.NextID++
	return m.NextID
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return m.failErr
	}
	return nil
}

func (m *memStore) Lot(_ context.Context, lotNo string) (*storage.Lot, error) {
	for _, l := range m.LotRows {
		if l.LotNo == lotNo {
			return &l, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) LotByID(_ context.Context, id int64) (*storage.Lot, error) {
	for _, l := range m.LotRows {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) Lots(_ context.Context, filter storage.LotFilter) ([]storage.Lot, error) {
	var out []storage.Lot
	for i := len(m.LotRows) - 1; i >= 0; i-- {
		l := m.LotRows[i]
		if filter.Search != "" && !strings.Contains(l.LotNo, filter.Search) && !strings.Contains(l.SKU, filter.Search) {
			continue
		}
		if filter.UserID != 0 && l.UserID != filter.UserID {
			continue
		}
		out = append(out, l)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) withNames(a storage.Assignment) *storage.Assignment {
	a.AssignerName = m.Users[a.AssignerID]
	a.AssigneeName = m.Users[a.AssigneeID]
	return &a
}

func (m *memStore) Assignment(_ context.Context, stage storage.Stage, id int64) (*storage.Assignment, error) {
	for _, a := range m.AssignmentRows[stage] {
		if a.ID == id {
			return m.withNames(a), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) LatestAssignment(_ context.Context, stage storage.Stage, lotNo string) (*storage.Assignment, error) {
	var latest *storage.Assignment
	for _, a := range m.AssignmentRows[stage] {
		if a.LotNo == lotNo && (latest == nil || a.ID > latest.ID) {
			latest = m.withNames(a)
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

func (m *memStore) PendingAssignments(_ context.Context, stage storage.Stage, assigneeID int64) ([]storage.Assignment, error) {
	var out []storage.Assignment
	for _, a := range m.AssignmentRows[stage] {
		if a.AssigneeID == assigneeID && a.IsApproved == nil {
			out = append(out, *m.withNames(a))
		}
	}
	return out, nil
}

func (m *memStore) SourceRecord(ctx context.Context, stage storage.Stage, id int64) (*storage.SourceRecord, error) {
	if stage == storage.StageCutting {
		lot, err := m.LotByID(ctx, id)
		if err != nil {
			return nil, err
		}
		sizes := make(map[string]int, len(lot.Sizes))
		for _, s := range lot.Sizes {
			sizes[s.Label] = s.TotalPieces
		}
		return &storage.SourceRecord{ID: lot.ID, OwnerID: lot.UserID, LotNo: lot.LotNo, SKU: lot.SKU, Sizes: sizes}, nil
	}

	p, err := m.Production(ctx, stage, id)
	if err != nil {
		return nil, err
	}
	return &storage.SourceRecord{ID: p.ID, OwnerID: p.UserID, LotNo: p.LotNo, SKU: p.SKU, Sizes: p.SizeMap()}, nil
}

func (m *memStore) Production(_ context.Context, stage storage.Stage, id int64) (*storage.Production, error) {
	for _, p := range m.ProductionRows[stage] {
		if p.ID == id {
			p.Sizes = append([]storage.ProductionSize(nil), p.Sizes...)
			return &p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) Productions(_ context.Context, stage storage.Stage, userID int64) ([]storage.Production, error) {
	var out []storage.Production
	for _, p := range m.ProductionRows[stage] {
		if userID == 0 || p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) ProductionExists(_ context.Context, stage storage.Stage, lotNo string, userID int64) (bool, error) {
	for _, p := range m.ProductionRows[stage] {
		if p.LotNo == lotNo && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SizeTotals(ctx context.Context, stage storage.Stage, lotNo string) (map[string]int, error) {
	totals := map[string]int{}
	if stage == storage.StageCutting {
		lot, err := m.Lot(ctx, lotNo)
		if err != nil {
			return totals, nil
		}
		for _, s := range lot.Sizes {
			totals[s.Label] += s.TotalPieces
		}
		return totals, nil
	}

	for _, p := range m.ProductionRows[stage] {
		if p.LotNo != lotNo {
			continue
		}
		for _, s := range p.Sizes {
			totals[s.Label] += s.Pieces
		}
	}
	return totals, nil
}

func (m *memStore) Rewash(_ context.Context, id int64) (*storage.Rewash, error) {
	for _, r := range m.RewashRows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) PendingRewash(_ context.Context, washingDataID int64) (*storage.Rewash, error) {
	for _, r := range m.RewashRows {
		if r.WashingDataID == washingDataID && r.Status == storage.RewashPending {
			return &r, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) PendingRewashes(_ context.Context, userID int64) ([]storage.Rewash, error) {
	var out []storage.Rewash
	for _, r := range m.RewashRows {
		if r.UserID == userID && r.Status == storage.RewashPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) PendingRewashTotals(_ context.Context, lotNo string) (map[string]int, error) {
	totals := map[string]int{}
	for _, r := range m.RewashRows {
		if r.LotNo != lotNo || r.Status != storage.RewashPending {
			continue
		}
		for _, s := range r.Sizes {
			totals[s.Label] += s.Pieces
		}
	}
	return totals, nil
}

func (m *memStore) UserByID(_ context.Context, id int64) (*storage.User, error) {
	name, ok := m.Users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.User{ID: id, Name: name, IsActive: !m.InactiveUsers[id]}, nil
}

func (m *memStore) DispatchedTotals(_ context.Context, finishingDataID int64) (map[string]int, error) {
	totals := map[string]int{}
	for _, d := range m.DispatchRows {
		if d.FinishingDataID == finishingDataID {
			totals[d.Label] += d.Pieces
		}
	}
	return totals, nil
}

func (m *memStore) Dispatches(_ context.Context, finishingDataID int64) ([]storage.Dispatch, error) {
	var out []storage.Dispatch
	for _, d := range m.DispatchRows {
		if d.FinishingDataID == finishingDataID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) LockLot(ctx context.Context, lotNo string) error {
	_, err := m.Lot(ctx, lotNo)
	return err
}

func (m *memStore) NextSequence(_ context.Context, key string) (int64, error) {
	m.Seqs[key]++
	return m.Seqs[key], nil
}

func (m *memStore) InsertLot(_ context.Context, lot *storage.Lot) (int64, error) {
	if err := m.fail("InsertLot"); err != nil {
		return 0, err
	}
	for _, l := range m.LotRows {
		if l.LotNo == lot.LotNo {
			return 0, storage.ErrDuplicate
		}
	}
	cp := *lot
	cp.ID = m.id()
	m.LotRows = append(m.LotRows, cp)
	return cp.ID, nil
}

func (m *memStore) InsertAssignment(_ context.Context, stage storage.Stage, a *storage.Assignment) (int64, error) {
	cp := *a
	cp.ID = m.id()
	m.AssignmentRows[stage] = append(m.AssignmentRows[stage], cp)
	return cp.ID, nil
}

func (m *memStore) DecideAssignment(_ context.Context, stage storage.Stage, id, assigneeID int64, approved bool, remark string, at time.Time) (bool, error) {
	list := m.AssignmentRows[stage]
	for i := range list {
		a := &list[i]
		if a.ID != id || a.AssigneeID != assigneeID || a.IsApproved != nil {
			continue
		}
		a.IsApproved = &approved
		a.ApprovedOn = &at
		if remark != "" {
			a.Remark = remark
		}
		return true, nil
	}
	return false, nil
}

func (m *memStore) InsertProduction(_ context.Context, stage storage.Stage, p *storage.Production) (int64, error) {
	if err := m.fail("InsertProduction"); err != nil {
		return 0, err
	}
	for _, e := range m.ProductionRows[stage] {
		if e.LotNo == p.LotNo && e.UserID == p.UserID {
			return 0, storage.ErrDuplicate
		}
	}
	cp := *p
	cp.ID = m.id()
	cp.Sizes = append([]storage.ProductionSize(nil), p.Sizes...)
	m.ProductionRows[stage] = append(m.ProductionRows[stage], cp)
	return cp.ID, nil
}

func (m *memStore) AddPieces(_ context.Context, stage storage.Stage, recordID int64, label string, delta int, _ time.Time) error {
	if err := m.fail("AddPieces"); err != nil {
		return err
	}
	list := m.ProductionRows[stage]
	for i := range list {
		p := &list[i]
		if p.ID != recordID {
			continue
		}
		found := false
		for j := range p.Sizes {
			if p.Sizes[j].Label == label {
				p.Sizes[j].Pieces += delta
				found = true
			}
		}
		if !found {
			p.Sizes = append(p.Sizes, storage.ProductionSize{Label: label, Pieces: delta})
		}
		p.TotalPieces = 0
		for _, s := range p.Sizes {
			p.TotalPieces += s.Pieces
		}
		return nil
	}
	return storage.ErrNotFound
}

func (m *memStore) InsertRewash(_ context.Context, r *storage.Rewash) (int64, error) {
	cp := *r
	cp.ID = m.id()
	m.RewashRows = append(m.RewashRows, cp)
	return cp.ID, nil
}

func (m *memStore) CompleteRewash(_ context.Context, id int64, at time.Time) (bool, error) {
	for i := range m.RewashRows {
		r := &m.RewashRows[i]
		if r.ID == id && r.Status == storage.RewashPending {
			r.Status = storage.RewashCompleted
			r.CompletedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertDispatches(_ context.Context, rows []storage.Dispatch) error {
	for _, d := range rows {
		d.ID = m.id()
		m.DispatchRows = append(m.DispatchRows, d)
	}
	return nil
}
