package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*models.Cart
	lines map[uuid.UUID]*models.CartItem
	fake  *fakeLoader
}

func (f *fakeCartRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeCartRepo) GetOrCreate(_ context.Context, accountID uuid.UUID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cart := range f.carts {
		if cart.AccountID == accountID {
			return cart, nil
		}
	}
	cart := &models.Cart{ID: uuid.New(), AccountID: accountID}
	f.carts[cart.ID] = cart
	return cart, nil
}

func (f *fakeCartRepo) FindByAccount(_ context.Context, accountID uuid.UUID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cart := range f.carts {
		if cart.AccountID == accountID {
			return cart, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) FindLine(_ context.Context, cartID, inventoryID uuid.UUID) (*models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range f.lines {
		if line.CartID == cartID && line.InventoryID == inventoryID {
			return line, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) FindLineByID(_ context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	line, ok := f.lines[itemID]
	if !ok || line.CartID != cartID {
		return nil, gorm.ErrRecordNotFound
	}
	return line, nil
}

func (f *fakeCartRepo) CreateLine(_ context.Context, item *models.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = uuid.New()
	f.lines[item.ID] = item
	return nil
}

func (f *fakeCartRepo) UpdateLineQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if line, ok := f.lines[itemID]; ok {
		line.Quantity = quantity
	}
	return nil
}

func (f *fakeCartRepo) DeleteLine(_ context.Context, itemID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lines, itemID)
	return nil
}

func (f *fakeCartRepo) ClearLines(_ context.Context, cartID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, line := range f.lines {
		if line.CartID == cartID {
			delete(f.lines, id)
		}
	}
	return nil
}

func (f *fakeCartRepo) ListLines(_ context.Context, cartID uuid.UUID) ([]LineRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []LineRecord
	for _, line := range f.lines {
		if line.CartID != cartID {
			continue
		}
		inventory := f.fake.inventories[line.InventoryID]
		product := f.fake.products[inventory.ProductID]
		records = append(records, LineRecord{
			ItemID:      line.ID,
			InventoryID: line.InventoryID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Size:        inventory.Size,
			UnitPrice:   inventory.Price,
			Quantity:    line.Quantity,
			Stock:       inventory.Stock,
			IsActive:    inventory.IsActive,
			ProductLive: product.IsApproved && product.IsAvailable && !product.DeletedAt.Valid,
			CategoryID:  product.CategoryID,
		})
	}
	return records, nil
}

type fakeLoader struct {
	inventories map[uuid.UUID]*models.Inventory
	products    map[uuid.UUID]*models.Product
}

func (f *fakeLoader) FindInventoryByID(_ context.Context, id uuid.UUID) (*models.Inventory, error) {
	inventory, ok := f.inventories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inventory, nil
}

func (f *fakeLoader) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok || product.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type fakeFavourites struct {
	removed []uuid.UUID
}

func (f *fakeFavourites) Delete(_ context.Context, _, productID uuid.UUID) (bool, error) {
	f.removed = append(f.removed, productID)
	return true, nil
}

type cartHarness struct {
	svc        Service
	repo       *fakeCartRepo
	loader     *fakeLoader
	favourites *fakeFavourites
	accountID  uuid.UUID
}

func newCartHarness(t *testing.T) *cartHarness {
	t.Helper()
	loader := &fakeLoader{
		inventories: make(map[uuid.UUID]*models.Inventory),
		products:    make(map[uuid.UUID]*models.Product),
	}
	repo := &fakeCartRepo{
		carts: make(map[uuid.UUID]*models.Cart),
		lines: make(map[uuid.UUID]*models.CartItem),
		fake:  loader,
	}
	favourites := &fakeFavourites{}
	svc, err := NewService(ServiceParams{Repo: repo, Catalog: loader, Favourites: favourites})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &cartHarness{
		svc:        svc,
		repo:       repo,
		loader:     loader,
		favourites: favourites,
		accountID:  uuid.New(),
	}
}

func (h *cartHarness) seedSize(price, stock int) *models.Inventory {
	product := &models.Product{
		ID:          uuid.New(),
		CategoryID:  uuid.New(),
		Name:        "Linen Shirt",
		Slug:        "linen-shirt",
		IsApproved:  true,
		IsAvailable: true,
	}
	h.loader.products[product.ID] = product
	inventory := &models.Inventory{
		ID:        uuid.New(),
		ProductID: product.ID,
		Size:      "M",
		Price:     price,
		Stock:     stock,
		IsActive:  true,
	}
	h.loader.inventories[inventory.ID] = inventory
	return inventory
}

func TestAddItemCreatesLineAndRemovesFavourite(t *testing.T) {
	h := newCartHarness(t)
	inventory := h.seedSize(799, 5)

	dto, err := h.svc.AddItem(context.Background(), h.accountID, AddItemRequest{
		InventoryID: inventory.ID,
		Quantity:    2,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].Quantity != 2 {
		t.Fatalf("lines = %+v", dto.Lines)
	}
	if dto.Subtotal != 1598 {
		t.Fatalf("subtotal = %d, want 1598", dto.Subtotal)
	}
	if len(h.favourites.removed) != 1 || h.favourites.removed[0] != inventory.ProductID {
		t.Fatalf("favourite removal not invoked for product")
	}
}

func TestAddItemMergesDuplicateLine(t *testing.T) {
	h := newCartHarness(t)
	inventory := h.seedSize(500, 10)
	ctx := context.Background()

	if _, err := h.svc.AddItem(ctx, h.accountID, AddItemRequest{InventoryID: inventory.ID, Quantity: 3}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	dto, err := h.svc.AddItem(ctx, h.accountID, AddItemRequest{InventoryID: inventory.ID, Quantity: 4})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].Quantity != 7 {
		t.Fatalf("lines = %+v, want one merged line of 7", dto.Lines)
	}
}

func TestAddItemEnforcesLineCapAndStock(t *testing.T) {
	h := newCartHarness(t)
	ctx := context.Background()

	capped := h.seedSize(500, 50)
	if _, err := h.svc.AddItem(ctx, h.accountID, AddItemRequest{InventoryID: capped.ID, Quantity: 8}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := h.svc.AddItem(ctx, h.accountID, AddItemRequest{InventoryID: capped.ID, Quantity: 3})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("line cap error = %v, want validation", err)
	}

	scarce := h.seedSize(500, 2)
	_, err = h.svc.AddItem(ctx, h.accountID, AddItemRequest{InventoryID: scarce.ID, Quantity: 3})
	domainErr = pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("stock error = %v, want validation", err)
	}
}

func TestAddItemRejectsInactiveSize(t *testing.T) {
	h := newCartHarness(t)
	inventory := h.seedSize(500, 5)
	inventory.IsActive = false

	_, err := h.svc.AddItem(context.Background(), h.accountID, AddItemRequest{
		InventoryID: inventory.ID,
		Quantity:    1,
	})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("inactive size error = %v, want not found", err)
	}
}

func TestUpdateAndRemoveItem(t *testing.T) {
	h := newCartHarness(t)
	inventory := h.seedSize(600, 8)
	ctx := context.Background()

	dto, err := h.svc.AddItem(ctx, h.accountID, AddItemRequest{InventoryID: inventory.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	itemID := dto.Lines[0].ItemID

	dto, err = h.svc.UpdateItem(ctx, h.accountID, itemID, UpdateItemRequest{Quantity: 5})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if dto.Lines[0].Quantity != 5 || dto.Subtotal != 3000 {
		t.Fatalf("after update: %+v", dto)
	}

	_, err = h.svc.UpdateItem(ctx, h.accountID, itemID, UpdateItemRequest{Quantity: 9})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("over-stock update error = %v, want validation", err)
	}

	dto, err = h.svc.RemoveItem(ctx, h.accountID, itemID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(dto.Lines) != 0 || dto.Subtotal != 0 {
		t.Fatalf("after remove: %+v", dto)
	}
}

func TestUpdateItemRejectsForeignLine(t *testing.T) {
	h := newCartHarness(t)
	inventory := h.seedSize(600, 8)
	ctx := context.Background()

	dto, err := h.svc.AddItem(ctx, h.accountID, AddItemRequest{InventoryID: inventory.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	stranger := uuid.New()
	_, err = h.svc.UpdateItem(ctx, stranger, dto.Lines[0].ItemID, UpdateItemRequest{Quantity: 2})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign line error = %v, want not found", err)
	}
}

func TestGetFlagsUnavailableLines(t *testing.T) {
	h := newCartHarness(t)
	inventory := h.seedSize(700, 5)
	ctx := context.Background()

	if _, err := h.svc.AddItem(ctx, h.accountID, AddItemRequest{InventoryID: inventory.ID, Quantity: 3}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// stock drops below the held quantity after the line is created
	inventory.Stock = 1

	dto, err := h.svc.Get(ctx, h.accountID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(dto.Lines) != 1 {
		t.Fatalf("lines = %+v", dto.Lines)
	}
	if dto.Lines[0].Available {
		t.Fatal("line should be flagged unavailable")
	}
	if dto.Subtotal != 0 {
		t.Fatalf("subtotal = %d, unavailable lines must not count", dto.Subtotal)
	}
}
