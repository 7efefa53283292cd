package request

import (
	"context"
	"testing"
	"time"

	"github.com/medstock/medstock/internal/domain/catalog"
	"github.com/medstock/medstock/internal/domain/shared"
)

type mockPatientRepo struct {
	byCURP    map[string]*Patient
	nextID    int64
	lastLimit int
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{byCURP: map[string]*Patient{}, nextID: 1}
}

func (m *mockPatientRepo) GetByCURP(_ context.Context, curp string) (*Patient, error) {
	p, ok := m.byCURP[curp]
	if !ok {
		return nil, shared.NotFoundf("patient %s not found", curp)
	}
	return p, nil
}

func (m *mockPatientRepo) Insert(_ context.Context, p *Patient) (int64, error) {
	cp := *p
	cp.ID = m.nextID
	m.nextID++
	m.byCURP[p.CURP] = &cp
	return cp.ID, nil
}

func (m *mockPatientRepo) SearchByCURP(_ context.Context, fragment string, limit int) ([]*Patient, error) {
	m.lastLimit = limit
	var out []*Patient
	for _, p := range m.byCURP {
		out = append(out, p)
	}
	return out, nil
}

type mockServiceRepo struct {
	// keyed by type then sub id
	ids map[string]map[int64]int64
}

func newMockServiceRepo() *mockServiceRepo {
	return &mockServiceRepo{ids: map[string]map[int64]int64{
		ServiceAmbulatory: {1: 10},
		ServiceHospital:   {1: 20},
	}}
}

func (m *mockServiceRepo) Resolve(_ context.Context, serviceType string, subID int64) (int64, error) {
	id, ok := m.ids[serviceType][subID]
	if !ok {
		return 0, shared.NotFoundf("service %s/%d not found", serviceType, subID)
	}
	return id, nil
}

func (m *mockServiceRepo) List(_ context.Context) ([]*ServiceView, error) {
	return []*ServiceView{
		{ID: 10, Type: ServiceAmbulatory, Name: "Consulta externa"},
		{ID: 20, Type: ServiceHospital, Name: "Medicina interna"},
	}, nil
}

type mockRequestRepo struct {
	requests map[int64]*Request
	lines    map[int64][]*Line
	nextID   int64

	unfulfilled      []*UnfulfilledItem
	unfulfilledStart time.Time
	unfulfilledEnd   time.Time
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: map[int64]*Request{}, lines: map[int64][]*Line{}, nextID: 1}
}

func (m *mockRequestRepo) Insert(_ context.Context, req *Request) (int64, error) {
	cp := *req
	cp.ID = m.nextID
	m.nextID++
	m.requests[cp.ID] = &cp
	return cp.ID, nil
}

func (m *mockRequestRepo) GetStatus(_ context.Context, id int64) (string, error) {
	req, ok := m.requests[id]
	if !ok {
		return "", shared.NotFoundf("request %d not found", id)
	}
	return req.Status, nil
}

func (m *mockRequestRepo) Close(_ context.Context, id int64, status, justification string, closedAt time.Time) (bool, error) {
	req, ok := m.requests[id]
	if !ok || req.Status != StatusPending {
		return false, nil
	}
	req.Status = status
	req.Justification = justification
	req.ClosedAt = &closedAt
	return true, nil
}

func (m *mockRequestRepo) InsertLine(_ context.Context, line *Line) error {
	cp := *line
	m.lines[line.RequestID] = append(m.lines[line.RequestID], &cp)
	return nil
}

func (m *mockRequestRepo) SetLineSupplied(_ context.Context, requestID int64, itemID string, supplied int, justification string) error {
	for _, line := range m.lines[requestID] {
		if line.ItemID == itemID {
			line.QuantitySupplied = supplied
			line.Justification = justification
			return nil
		}
	}
	return shared.NotFoundf("request %d has no line for item %s", requestID, itemID)
}

func (m *mockRequestRepo) Lines(_ context.Context, requestID int64) ([]*Line, error) {
	return m.lines[requestID], nil
}

func (m *mockRequestRepo) List(_ context.Context, limit, offset int) ([]*View, int, error) {
	return nil, 0, nil
}

func (m *mockRequestRepo) ListPending(_ context.Context) ([]*View, error) { return nil, nil }

func (m *mockRequestRepo) Get(_ context.Context, id int64) (*View, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, shared.NotFoundf("request %d not found", id)
	}
	return &View{Request: *req, Lines: m.lines[id]}, nil
}

func (m *mockRequestRepo) Aggregate(_ context.Context, start, end time.Time) ([]*ItemUsage, error) {
	return nil, nil
}

func (m *mockRequestRepo) Unfulfilled(_ context.Context, start, end time.Time) ([]*UnfulfilledItem, error) {
	m.unfulfilledStart, m.unfulfilledEnd = start, end
	return m.unfulfilled, nil
}

type mockItemRepo struct {
	stock map[string]int
}

func (m *mockItemRepo) GetByID(_ context.Context, id string) (*catalog.Item, error) {
	qty, ok := m.stock[id]
	if !ok {
		return nil, shared.NotFoundf("item %s not found", id)
	}
	return &catalog.Item{ID: id, Quantity: qty}, nil
}

func (m *mockItemRepo) GetDetail(_ context.Context, id string) (*catalog.ItemDetail, error) {
	qty, ok := m.stock[id]
	if !ok {
		return nil, shared.NotFoundf("item %s not found", id)
	}
	return &catalog.ItemDetail{Quantity: qty}, nil
}

func (m *mockItemRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.stock[id]
	return ok, nil
}

func (m *mockItemRepo) List(_ context.Context, limit, offset int) ([]*catalog.ItemWithLot, int, error) {
	return nil, 0, nil
}

func (m *mockItemRepo) Search(_ context.Context, q string, limit int) ([]*catalog.Item, error) {
	return nil, nil
}

func (m *mockItemRepo) Insert(_ context.Context, item *catalog.Item) error {
	m.stock[item.ID] = item.Quantity
	return nil
}

func (m *mockItemRepo) AddQuantity(_ context.Context, id string, delta int) error {
	if _, ok := m.stock[id]; !ok {
		return shared.NotFoundf("item %s not found", id)
	}
	m.stock[id] += delta
	return nil
}

func (m *mockItemRepo) DeductQuantity(_ context.Context, id string, qty int) error {
	cur, ok := m.stock[id]
	if !ok {
		return shared.NotFoundf("item %s not found", id)
	}
	cur -= qty
	if cur < 0 {
		cur = 0
	}
	m.stock[id] = cur
	return nil
}

func (m *mockItemRepo) UpdateStock(_ context.Context, id string, quantity int, presentation string) error {
	m.stock[id] = quantity
	return nil
}

func (m *mockItemRepo) Delete(_ context.Context, id string) error {
	delete(m.stock, id)
	return nil
}

type trackingTxRunner struct {
	rolledBack bool
}

func (r *trackingTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		r.rolledBack = true
		return err
	}
	return nil
}

type fixture struct {
	svc      *Service
	patients *mockPatientRepo
	requests *mockRequestRepo
	items    *mockItemRepo
	tx       *trackingTxRunner
}

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		patients: newMockPatientRepo(),
		requests: newMockRequestRepo(),
		items:    &mockItemRepo{stock: map[string]int{"A": 5, "B": 10}},
		tx:       &trackingTxRunner{},
	}
	f.svc = NewService(f.patients, newMockServiceRepo(), f.requests, f.items, f.tx)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func validCreate() *CreateInput {
	return &CreateInput{
		Patient: PatientInput{
			CURP:            "GOMC860315HDFRRL09",
			FirstName:       "Carlos",
			PaternalSurname: "Gomez",
			Age:             39,
			Gender:          "H",
		},
		ServiceType:   ServiceAmbulatory,
		ServiceSubID:  1,
		RequesterName: "Dra. Rivera",
		Diagnosis:     "Neumonia adquirida en comunidad",
		Priority:      "Urgente",
		Lines: []LineInput{
			{ItemID: "A", Presentation: "Caja", Quantity: 8},
			{ItemID: "B", Presentation: "Frasco", Quantity: 5},
		},
	}
}

func TestCreate_NewPatient(t *testing.T) {
	f := newFixture()

	id, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := f.requests.requests[id]
	if req == nil {
		t.Fatal("request not stored")
	}
	if req.Status != StatusPending {
		t.Errorf("status = %q, want %q", req.Status, StatusPending)
	}
	if req.Justification != "" {
		t.Errorf("justification = %q, want empty", req.Justification)
	}
	if !req.CreatedAt.Equal(testNow) {
		t.Errorf("createdAt = %v, want %v", req.CreatedAt, testNow)
	}
	if req.ServiceID != 10 {
		t.Errorf("serviceID = %d, want 10", req.ServiceID)
	}
	if req.RequesterName != "Dra. Rivera" {
		t.Errorf("requesterName = %q, want %q", req.RequesterName, "Dra. Rivera")
	}
	if req.Diagnosis != "Neumonia adquirida en comunidad" {
		t.Errorf("diagnosis = %q", req.Diagnosis)
	}
	if req.Priority != "Urgente" {
		t.Errorf("priority = %q, want %q", req.Priority, "Urgente")
	}

	lines := f.requests.lines[id]
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	wantPresentation := map[string]string{"A": "Caja", "B": "Frasco"}
	for _, line := range lines {
		if line.QuantitySupplied != 0 {
			t.Errorf("line %s supplied = %d, want 0", line.ItemID, line.QuantitySupplied)
		}
		if line.Presentation != wantPresentation[line.ItemID] {
			t.Errorf("line %s presentation = %q, want %q", line.ItemID, line.Presentation, wantPresentation[line.ItemID])
		}
	}

	if f.patients.byCURP["GOMC860315HDFRRL09"] == nil {
		t.Error("patient not created")
	}
}

func TestCreate_ExistingPatientKeepsDemographics(t *testing.T) {
	f := newFixture()
	f.patients.byCURP["GOMC860315HDFRRL09"] = &Patient{
		ID: 7, CURP: "GOMC860315HDFRRL09", FirstName: "CARLOS ORIGINAL", Age: 38,
	}

	in := validCreate()
	in.Patient.FirstName = "Otro Nombre"
	id, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.requests.requests[id].PatientID != 7 {
		t.Errorf("patientID = %d, want 7", f.requests.requests[id].PatientID)
	}
	if got := f.patients.byCURP["GOMC860315HDFRRL09"].FirstName; got != "CARLOS ORIGINAL" {
		t.Errorf("demographics overwritten: %q", got)
	}
}

func TestCreate_UnknownItemAbortsAll(t *testing.T) {
	f := newFixture()

	in := validCreate()
	in.Lines = append(in.Lines, LineInput{ItemID: "missing", Quantity: 1})
	_, err := f.svc.Create(context.Background(), in)
	if !shared.IsKind(err, shared.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if !f.tx.rolledBack {
		t.Error("transaction not rolled back")
	}
}

func TestCreate_UnknownService(t *testing.T) {
	f := newFixture()

	in := validCreate()
	in.ServiceSubID = 99
	if _, err := f.svc.Create(context.Background(), in); !shared.IsKind(err, shared.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()

	in := validCreate()
	in.Patient.CURP = "  "
	if _, err := f.svc.Create(context.Background(), in); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("empty curp err = %v, want validation", err)
	}

	in = validCreate()
	in.Lines = nil
	if _, err := f.svc.Create(context.Background(), in); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("no lines err = %v, want validation", err)
	}

	in = validCreate()
	in.Lines[0].Quantity = 0
	if _, err := f.svc.Create(context.Background(), in); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("zero quantity err = %v, want validation", err)
	}

	in = validCreate()
	in.ServiceType = "domicilio"
	if _, err := f.svc.Create(context.Background(), in); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("bad service type err = %v, want validation", err)
	}
}

func (f *fixture) createPending(t *testing.T) int64 {
	t.Helper()
	id, err := f.svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return id
}

func TestFulfill_ApprovedDeductsFlooredAtZero(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)

	err := f.svc.Fulfill(context.Background(), id, []FulfillLine{
		{ItemID: "A", Supplied: 8},
		{ItemID: "B", Supplied: 5},
	}, StatusApproved)
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}

	// A had 5 in stock: deducting 8 floors at zero instead of going negative.
	if f.items.stock["A"] != 0 {
		t.Errorf("stock A = %d, want 0", f.items.stock["A"])
	}
	if f.items.stock["B"] != 5 {
		t.Errorf("stock B = %d, want 5", f.items.stock["B"])
	}

	req := f.requests.requests[id]
	if req.Status != StatusApproved {
		t.Errorf("status = %q, want approved", req.Status)
	}
	if req.Justification != "" {
		t.Errorf("justification = %q, want empty on approval", req.Justification)
	}
	if req.ClosedAt == nil || !req.ClosedAt.Equal(testNow) {
		t.Errorf("closedAt = %v, want %v", req.ClosedAt, testNow)
	}
	for _, line := range f.requests.lines[id] {
		if line.QuantitySupplied == 0 {
			t.Errorf("line %s supplied not set", line.ItemID)
		}
	}
}

func TestFulfill_RejectedStoresJustification(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)

	err := f.svc.Fulfill(context.Background(), id, []FulfillLine{
		{ItemID: "A", Supplied: 0, Justification: JustificationNoStock},
		{ItemID: "B", Supplied: 0, Justification: JustificationDirectPurchase},
	}, StatusRejected)
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}

	req := f.requests.requests[id]
	if req.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", req.Status)
	}
	// The batch justification comes from the first line.
	if req.Justification != JustificationNoStock {
		t.Errorf("justification = %q, want %q", req.Justification, JustificationNoStock)
	}
	// Rejection never touches stock.
	if f.items.stock["A"] != 5 || f.items.stock["B"] != 10 {
		t.Errorf("stock mutated on rejection: %v", f.items.stock)
	}
}

func TestFulfill_InvalidJustificationRollsBack(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)

	err := f.svc.Fulfill(context.Background(), id, []FulfillLine{
		{ItemID: "A", Supplied: 0, Justification: "porque si"},
	}, StatusRejected)
	if !shared.IsKind(err, shared.KindInvalidJustification) {
		t.Fatalf("err = %v, want invalid justification", err)
	}
	if !f.tx.rolledBack {
		t.Error("transaction not rolled back")
	}
}

func TestFulfill_AlreadyClosed(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)
	f.requests.requests[id].Status = StatusApproved

	err := f.svc.Fulfill(context.Background(), id, []FulfillLine{{ItemID: "A", Supplied: 1}}, StatusApproved)
	if !shared.IsKind(err, shared.KindInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition", err)
	}
	// The guard fails before any staging, so nothing moved.
	if f.items.stock["A"] != 5 {
		t.Errorf("stock A = %d, want 5", f.items.stock["A"])
	}
	for _, line := range f.requests.lines[id] {
		if line.QuantitySupplied != 0 {
			t.Errorf("line %s supplied = %d, want 0", line.ItemID, line.QuantitySupplied)
		}
	}
}

func TestFulfill_UnknownRequest(t *testing.T) {
	f := newFixture()
	err := f.svc.Fulfill(context.Background(), 404, []FulfillLine{{ItemID: "A", Supplied: 1}}, StatusApproved)
	if !shared.IsKind(err, shared.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestFulfill_Validation(t *testing.T) {
	f := newFixture()
	id := f.createPending(t)

	if err := f.svc.Fulfill(context.Background(), id, nil, StatusApproved); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("no lines err = %v, want validation", err)
	}
	if err := f.svc.Fulfill(context.Background(), id, []FulfillLine{{ItemID: "A", Supplied: 1}}, StatusPending); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("pending final status err = %v, want validation", err)
	}
	if err := f.svc.Fulfill(context.Background(), id, []FulfillLine{{ItemID: "A", Supplied: -1}}, StatusApproved); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("negative supplied err = %v, want validation", err)
	}
}

func TestSearchPatients_EmptyQuery(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.SearchPatients(context.Background(), " "); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestUnfulfilledUsage_PerItemTotals(t *testing.T) {
	f := newFixture()
	f.requests.unfulfilled = []*UnfulfilledItem{
		{ItemID: "B", ItemName: "Paracetamol", Requested: 12},
		{ItemID: "A", ItemName: "Amoxicilina", Requested: 3},
	}

	got, err := f.svc.UnfulfilledUsage(context.Background(), PeriodWeekly, testNow)
	if err != nil {
		t.Fatalf("UnfulfilledUsage: %v", err)
	}
	if len(got) != 2 || got[0].ItemID != "B" || got[0].Requested != 12 {
		t.Errorf("totals = %+v", got)
	}

	wantStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if !f.requests.unfulfilledStart.Equal(wantStart) || !f.requests.unfulfilledEnd.Equal(wantEnd) {
		t.Errorf("window = [%v, %v), want [%v, %v)",
			f.requests.unfulfilledStart, f.requests.unfulfilledEnd, wantStart, wantEnd)
	}
}

func TestSearchPatients_CapsResultsAtFive(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.SearchPatients(context.Background(), "GOMC"); err != nil {
		t.Fatalf("SearchPatients: %v", err)
	}
	if f.patients.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", f.patients.lastLimit)
	}
}
