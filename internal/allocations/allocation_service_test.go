package allocations

import (
	"context"
	"testing"

	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/metadata"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fakeTransactor struct{}

func (fakeTransactor) WithTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return fn(nil)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) LockEquipment(tx *goqu.TxDatabase, equipmentID string) error {
	args := m.Called(tx, equipmentID)
	return args.Error(0)
}

func (m *MockLedger) ListActiveForEquipment(tx *goqu.TxDatabase, equipmentID string) ([]models.ActiveAllocation, error) {
	args := m.Called(tx, equipmentID)
	var active []models.ActiveAllocation
	if args.Get(0) != nil {
		active = args.Get(0).([]models.ActiveAllocation)
	}
	return active, args.Error(1)
}

func (m *MockLedger) ListForProject(tx *goqu.TxDatabase, projectID string) ([]models.Allocation, error) {
	args := m.Called(tx, projectID)
	var allocations []models.Allocation
	if args.Get(0) != nil {
		allocations = args.Get(0).([]models.Allocation)
	}
	return allocations, args.Error(1)
}

func (m *MockLedger) FindForProject(tx *goqu.TxDatabase, projectID, equipmentID string) (*models.Allocation, error) {
	args := m.Called(tx, projectID, equipmentID)
	var allocation *models.Allocation
	if args.Get(0) != nil {
		allocation = args.Get(0).(*models.Allocation)
	}
	return allocation, args.Error(1)
}

func (m *MockLedger) Insert(tx *goqu.TxDatabase, allocation *models.Allocation) error {
	args := m.Called(tx, allocation)
	return args.Error(0)
}

func (m *MockLedger) Update(tx *goqu.TxDatabase, allocation *models.Allocation) error {
	args := m.Called(tx, allocation)
	return args.Error(0)
}

type MockEquipmentDirectory struct {
	mock.Mock
}

func (m *MockEquipmentDirectory) Get(tx *goqu.TxDatabase, id string) (*models.Equipment, error) {
	args := m.Called(tx, id)
	var equipment *models.Equipment
	if args.Get(0) != nil {
		equipment = args.Get(0).(*models.Equipment)
	}
	return equipment, args.Error(1)
}

type MockProjectDirectory struct {
	mock.Mock
}

func (m *MockProjectDirectory) Get(tx *goqu.TxDatabase, id string) (*models.Project, error) {
	args := m.Called(tx, id)
	var project *models.Project
	if args.Get(0) != nil {
		project = args.Get(0).(*models.Project)
	}
	return project, args.Error(1)
}

func (m *MockProjectDirectory) UpdateStatus(tx *goqu.TxDatabase, id string, status metadata.ProjectStatus) error {
	args := m.Called(tx, id, status)
	return args.Error(0)
}

func newTestService() (*Service, *MockLedger, *MockEquipmentDirectory, *MockProjectDirectory) {
	ledger := new(MockLedger)
	equipment := new(MockEquipmentDirectory)
	projects := new(MockProjectDirectory)
	service := NewService(fakeTransactor{}, ledger, equipment, projects, nil)
	return service, ledger, equipment, projects
}

func testProject(status metadata.ProjectStatus, startDay, endDay int) *models.Project {
	return &models.Project{
		ID:        "proj-1",
		Code:      "EV-2025-01",
		Status:    status,
		StartDate: date(startDay),
		EndDate:   date(endDay),
	}
}

func testEquipment(total int) *models.Equipment {
	return &models.Equipment{
		ID:            "equip-1",
		Code:          "PAR64",
		QuantityTotal: total,
		Active:        true,
	}
}

func TestReserveSuccess(t *testing.T) {
	service, ledger, equipment, projects := newTestService()

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectPlanned, 1, 5), nil)
	equipment.On("Get", mock.Anything, "equip-1").Return(testEquipment(3), nil)
	ledger.On("LockEquipment", mock.Anything, "equip-1").Return(nil)
	ledger.On("ListActiveForEquipment", mock.Anything, "equip-1").Return(nil, nil)
	ledger.On("FindForProject", mock.Anything, "proj-1", "equip-1").Return(nil, nil)
	ledger.On("Insert", mock.Anything, mock.AnythingOfType("*models.Allocation")).Return(nil)

	allocation, err := service.Reserve(context.Background(), "proj-1", "equip-1", 3, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, allocation.QuantityRequested)
	assert.Equal(t, 0, allocation.QuantityPrepared)
	assert.Equal(t, 0, allocation.QuantityReturned)
	assert.NotEmpty(t, allocation.ID)
	ledger.AssertExpectations(t)
}

func TestReserveInvalidQuantity(t *testing.T) {
	service, ledger, _, _ := newTestService()

	_, err := service.Reserve(context.Background(), "proj-1", "equip-1", 0, nil)

	var invalidQuantity *custom_error.InvalidQuantityError
	assert.ErrorAs(t, err, &invalidQuantity)
	ledger.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

// Two windows sharing a boundary day conflict: [Jan 1, Jan 5] blocks
// [Jan 5, Jan 10] entirely on an item with 3 units.
func TestReserveInclusiveBoundaryConflict(t *testing.T) {
	service, ledger, equipment, projects := newTestService()

	existing := activeAllocation(3, 0, 1, 5, "planned")
	existing.ProjectID = "other-project"

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectPlanned, 5, 10), nil)
	equipment.On("Get", mock.Anything, "equip-1").Return(testEquipment(3), nil)
	ledger.On("LockEquipment", mock.Anything, "equip-1").Return(nil)
	ledger.On("ListActiveForEquipment", mock.Anything, "equip-1").Return([]models.ActiveAllocation{existing}, nil)

	_, err := service.Reserve(context.Background(), "proj-1", "equip-1", 1, nil)

	var insufficient *custom_error.InsufficientAvailabilityError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Requested)
	assert.Equal(t, 0, insufficient.Available)
	ledger.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestReserveNonOverlappingWindows(t *testing.T) {
	service, ledger, equipment, projects := newTestService()

	existing := activeAllocation(3, 0, 1, 4, "planned")
	existing.ProjectID = "other-project"

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectPlanned, 6, 10), nil)
	equipment.On("Get", mock.Anything, "equip-1").Return(testEquipment(3), nil)
	ledger.On("LockEquipment", mock.Anything, "equip-1").Return(nil)
	ledger.On("ListActiveForEquipment", mock.Anything, "equip-1").Return([]models.ActiveAllocation{existing}, nil)
	ledger.On("FindForProject", mock.Anything, "proj-1", "equip-1").Return(nil, nil)
	ledger.On("Insert", mock.Anything, mock.AnythingOfType("*models.Allocation")).Return(nil)

	allocation, err := service.Reserve(context.Background(), "proj-1", "equip-1", 3, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, allocation.QuantityRequested)
	ledger.AssertExpectations(t)
}

func TestReserveTopsUpExistingPair(t *testing.T) {
	service, ledger, equipment, projects := newTestService()

	existing := activeAllocation(2, 0, 1, 5, "planned")
	existing.ID = "alloc-1"
	existing.ProjectID = "proj-1"
	existing.EquipmentID = "equip-1"

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectPlanned, 1, 5), nil)
	equipment.On("Get", mock.Anything, "equip-1").Return(testEquipment(5), nil)
	ledger.On("LockEquipment", mock.Anything, "equip-1").Return(nil)
	ledger.On("ListActiveForEquipment", mock.Anything, "equip-1").Return([]models.ActiveAllocation{existing}, nil)
	ledger.On("FindForProject", mock.Anything, "proj-1", "equip-1").Return(&existing.Allocation, nil)
	ledger.On("Update", mock.Anything, mock.AnythingOfType("*models.Allocation")).Return(nil)

	allocation, err := service.Reserve(context.Background(), "proj-1", "equip-1", 3, nil)

	assert.NoError(t, err)
	assert.Equal(t, "alloc-1", allocation.ID)
	assert.Equal(t, 5, allocation.QuantityRequested)
	ledger.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	ledger.AssertExpectations(t)
}

// A pair's ledger row survives a full return. Reserving the same
// equipment again for the still-open project must top up that row, not
// attempt a second insert against the pair uniqueness constraint.
func TestReserveAgainAfterFullReturn(t *testing.T) {
	service, ledger, equipment, projects := newTestService()

	retired := &models.Allocation{
		ID:                "alloc-1",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-1",
		QuantityRequested: 2,
		QuantityPrepared:  2,
		QuantityReturned:  2,
	}

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectOngoing, 1, 5), nil)
	equipment.On("Get", mock.Anything, "equip-1").Return(testEquipment(3), nil)
	ledger.On("LockEquipment", mock.Anything, "equip-1").Return(nil)
	// Fully returned rows are absent from the active set.
	ledger.On("ListActiveForEquipment", mock.Anything, "equip-1").Return(nil, nil)
	ledger.On("FindForProject", mock.Anything, "proj-1", "equip-1").Return(retired, nil)
	ledger.On("Update", mock.Anything, mock.MatchedBy(func(a *models.Allocation) bool {
		return a.ID == "alloc-1" && a.QuantityRequested == 5 && a.QuantityReturned == 2
	})).Return(nil)

	allocation, err := service.Reserve(context.Background(), "proj-1", "equip-1", 3, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, allocation.Outstanding())
	ledger.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	ledger.AssertExpectations(t)
}

// A canceled project's allocations no longer block a fully overlapping
// reservation of the same size.
func TestReserveAfterCancellation(t *testing.T) {
	service, ledger, equipment, projects := newTestService()

	canceled := activeAllocation(5, 0, 1, 5, "canceled")
	canceled.ProjectID = "other-project"

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectPlanned, 1, 5), nil)
	equipment.On("Get", mock.Anything, "equip-1").Return(testEquipment(5), nil)
	ledger.On("LockEquipment", mock.Anything, "equip-1").Return(nil)
	ledger.On("ListActiveForEquipment", mock.Anything, "equip-1").Return([]models.ActiveAllocation{canceled}, nil)
	ledger.On("FindForProject", mock.Anything, "proj-1", "equip-1").Return(nil, nil)
	ledger.On("Insert", mock.Anything, mock.AnythingOfType("*models.Allocation")).Return(nil)

	allocation, err := service.Reserve(context.Background(), "proj-1", "equip-1", 5, nil)

	assert.NoError(t, err)
	assert.Equal(t, 5, allocation.QuantityRequested)
	ledger.AssertExpectations(t)
}

func TestReserveBusyEquipment(t *testing.T) {
	service, ledger, _, _ := newTestService()

	ledger.On("LockEquipment", mock.Anything, "equip-1").Return(&custom_error.BusyError{Resource: "equipment equip-1"})

	_, err := service.Reserve(context.Background(), "proj-1", "equip-1", 1, nil)

	var busy *custom_error.BusyError
	assert.ErrorAs(t, err, &busy)
	ledger.AssertNotCalled(t, "ListActiveForEquipment", mock.Anything, mock.Anything)
}

func TestCheckoutIdempotent(t *testing.T) {
	service, ledger, _, projects := newTestService()

	requestedAt := date(1)
	first := models.Allocation{
		ID:                "alloc-1",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-1",
		QuantityRequested: 5,
		RequestedAt:       requestedAt,
	}

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectPlanned, 1, 5), nil).Once()
	ledger.On("ListForProject", mock.Anything, "proj-1").Return([]models.Allocation{first}, nil).Once()
	ledger.On("Update", mock.Anything, mock.AnythingOfType("*models.Allocation")).Return(nil).Once()
	projects.On("UpdateStatus", mock.Anything, "proj-1", metadata.ProjectOngoing).Return(nil).Once()

	checkedOut, err := service.Checkout(context.Background(), "proj-1")
	assert.NoError(t, err)
	assert.Len(t, checkedOut, 1)
	assert.Equal(t, 5, checkedOut[0].QuantityPrepared)
	assert.NotNil(t, checkedOut[0].CheckedOutAt)

	// Second invocation sees the already-prepared state and changes nothing.
	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectOngoing, 1, 5), nil).Once()
	ledger.On("ListForProject", mock.Anything, "proj-1").Return([]models.Allocation{checkedOut[0]}, nil).Once()

	again, err := service.Checkout(context.Background(), "proj-1")
	assert.NoError(t, err)
	assert.Equal(t, checkedOut, again)

	ledger.AssertExpectations(t)
	projects.AssertExpectations(t)
}

func TestCheckoutNoActiveAllocations(t *testing.T) {
	service, ledger, _, projects := newTestService()

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectPlanned, 1, 5), nil)
	ledger.On("ListForProject", mock.Anything, "proj-1").Return(nil, nil)

	_, err := service.Checkout(context.Background(), "proj-1")

	var noActive *custom_error.NoActiveAllocationsError
	assert.ErrorAs(t, err, &noActive)
	projects.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutCompletedProject(t *testing.T) {
	service, _, _, projects := newTestService()

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectCompleted, 1, 5), nil)

	_, err := service.Checkout(context.Background(), "proj-1")

	var invalidTransition *custom_error.InvalidTransitionError
	assert.ErrorAs(t, err, &invalidTransition)
}

func TestReturnCompletesProject(t *testing.T) {
	service, ledger, _, projects := newTestService()

	checkedOutAt := date(2)
	allocation := &models.Allocation{
		ID:                "alloc-1",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-1",
		QuantityRequested: 5,
		QuantityPrepared:  5,
		CheckedOutAt:      &checkedOutAt,
	}

	ledger.On("FindForProject", mock.Anything, "proj-1", "equip-1").Return(allocation, nil)
	ledger.On("Update", mock.Anything, allocation).Return(nil)
	// The re-read sees the updated row: everything is back.
	ledger.On("ListForProject", mock.Anything, "proj-1").Return([]models.Allocation{{
		ID:                "alloc-1",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-1",
		QuantityRequested: 5,
		QuantityPrepared:  5,
		QuantityReturned:  5,
	}}, nil)
	projects.On("UpdateStatus", mock.Anything, "proj-1", metadata.ProjectCompleted).Return(nil)

	returned, err := service.Return(context.Background(), "proj-1", "equip-1", 5)

	assert.NoError(t, err)
	assert.Equal(t, 5, returned.QuantityReturned)
	assert.NotNil(t, returned.ReturnedAt)
	projects.AssertExpectations(t)
}

func TestReturnPartialKeepsProjectOngoing(t *testing.T) {
	service, ledger, _, projects := newTestService()

	allocation := &models.Allocation{
		ID:                "alloc-1",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-1",
		QuantityRequested: 5,
		QuantityPrepared:  5,
	}

	ledger.On("FindForProject", mock.Anything, "proj-1", "equip-1").Return(allocation, nil)
	ledger.On("Update", mock.Anything, allocation).Return(nil)
	ledger.On("ListForProject", mock.Anything, "proj-1").Return([]models.Allocation{{
		ID:                "alloc-1",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-1",
		QuantityRequested: 5,
		QuantityPrepared:  5,
		QuantityReturned:  2,
	}}, nil)

	returned, err := service.Return(context.Background(), "proj-1", "equip-1", 2)

	assert.NoError(t, err)
	assert.Equal(t, 2, returned.QuantityReturned)
	projects.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestReturnMoreThanPrepared(t *testing.T) {
	service, ledger, _, _ := newTestService()

	allocation := &models.Allocation{
		ID:                "alloc-1",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-1",
		QuantityRequested: 3,
		QuantityPrepared:  3,
	}

	ledger.On("FindForProject", mock.Anything, "proj-1", "equip-1").Return(allocation, nil)

	_, err := service.Return(context.Background(), "proj-1", "equip-1", 4)

	var overReturn *custom_error.OverReturnError
	assert.ErrorAs(t, err, &overReturn)
	assert.Equal(t, 4, overReturn.Requested)
	assert.Equal(t, 3, overReturn.Prepared)
	ledger.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCancelReleasesPrepared(t *testing.T) {
	service, ledger, _, projects := newTestService()

	prepared := models.Allocation{
		ID:                "alloc-1",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-1",
		QuantityRequested: 5,
		QuantityPrepared:  2,
	}
	unprepared := models.Allocation{
		ID:                "alloc-2",
		ProjectID:         "proj-1",
		EquipmentID:       "equip-2",
		QuantityRequested: 4,
	}

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectOngoing, 1, 5), nil)
	ledger.On("ListForProject", mock.Anything, "proj-1").Return([]models.Allocation{prepared, unprepared}, nil)
	ledger.On("Update", mock.Anything, mock.MatchedBy(func(a *models.Allocation) bool {
		return a.ID == "alloc-1" && a.QuantityReturned == 2
	})).Return(nil).Once()
	projects.On("UpdateStatus", mock.Anything, "proj-1", metadata.ProjectCanceled).Return(nil)

	err := service.Cancel(context.Background(), "proj-1")

	assert.NoError(t, err)
	ledger.AssertExpectations(t)
	projects.AssertExpectations(t)
}

func TestCancelTerminalProject(t *testing.T) {
	service, _, _, projects := newTestService()

	projects.On("Get", mock.Anything, "proj-1").Return(testProject(metadata.ProjectCompleted, 1, 5), nil)

	err := service.Cancel(context.Background(), "proj-1")

	var invalidTransition *custom_error.InvalidTransitionError
	assert.ErrorAs(t, err, &invalidTransition)
}

func TestAvailabilityInvalidWindow(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.Availability(context.Background(), "equip-1", Window{Start: date(10), End: date(1)})

	var invalidRange *custom_error.InvalidDateRangeError
	assert.ErrorAs(t, err, &invalidRange)
}

func TestAvailabilityComputesFromLedger(t *testing.T) {
	service, ledger, equipment, _ := newTestService()

	equipment.On("Get", mock.Anything, "equip-1").Return(testEquipment(10), nil)
	ledger.On("ListActiveForEquipment", mock.Anything, "equip-1").Return([]models.ActiveAllocation{
		activeAllocation(4, 1, 1, 5, "ongoing"),
	}, nil)

	available, err := service.Availability(context.Background(), "equip-1", window(3, 8))

	assert.NoError(t, err)
	assert.Equal(t, 7, available)
}

// Sequences of reservations can never push committed quantity past total
// stock: once the remainder is gone, further overlapping reserves fail.
func TestReserveSequenceNeverOverbooks(t *testing.T) {
	service, ledger, equipment, projects := newTestService()

	var booked []models.ActiveAllocation
	total := 3

	for i, req := range []struct {
		project string
		qty     int
		wantErr bool
	}{
		{"proj-a", 2, false},
		{"proj-b", 1, false},
		{"proj-c", 1, true},
	} {
		ledger.ExpectedCalls = nil
		projects.ExpectedCalls = nil
		equipment.ExpectedCalls = nil

		project := testProject(metadata.ProjectPlanned, 1, 5)
		project.ID = req.project

		projects.On("Get", mock.Anything, req.project).Return(project, nil)
		equipment.On("Get", mock.Anything, "equip-1").Return(testEquipment(total), nil)
		ledger.On("LockEquipment", mock.Anything, "equip-1").Return(nil)
		ledger.On("ListActiveForEquipment", mock.Anything, "equip-1").Return(append([]models.ActiveAllocation(nil), booked...), nil)
		ledger.On("FindForProject", mock.Anything, req.project, "equip-1").Return(nil, nil)
		ledger.On("Insert", mock.Anything, mock.AnythingOfType("*models.Allocation")).Run(func(args mock.Arguments) {
			allocation := args.Get(1).(*models.Allocation)
			booked = append(booked, models.ActiveAllocation{
				Allocation:    *allocation,
				ProjectStart:  date(1),
				ProjectEnd:    date(5),
				ProjectStatus: "planned",
			})
		}).Return(nil)

		_, err := service.Reserve(context.Background(), req.project, "equip-1", req.qty, nil)
		if req.wantErr {
			var insufficient *custom_error.InsufficientAvailabilityError
			assert.ErrorAs(t, err, &insufficient, "step %d", i)
		} else {
			assert.NoError(t, err, "step %d", i)
		}
	}

	var committed int
	for _, a := range booked {
		committed += a.Outstanding()
	}
	assert.LessOrEqual(t, committed, total)
}
