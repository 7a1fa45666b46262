package records

import (
	"context"

	"github.com/l0p7/innkeeper/internal/store"
)

func (s *Service) CleaningTasks(ctx context.Context) ([]store.CleaningTask, error) {
	return read(ctx, s, key("cleaning", "all"), s.store.ListCleaningTasks)
}

func (s *Service) CleaningTask(ctx context.Context, id string) (store.CleaningTask, error) {
	return read(ctx, s, key("cleaning", id), func(ctx context.Context) (store.CleaningTask, error) {
		return s.store.GetCleaningTask(ctx, id)
	})
}

// CreateCleaningTask stores a cleaning task, pending unless a status is given.
func (s *Service) CreateCleaningTask(ctx context.Context, task store.CleaningTask) (store.CleaningTask, error) {
	if task.Status == "" {
		task.Status = store.WorkPending
	}
	return write(ctx, s, "create cleaning task", func(ctx context.Context) (store.CleaningTask, error) {
		return s.store.CreateCleaningTask(ctx, task)
	})
}

func (s *Service) UpdateCleaningTask(ctx context.Context, task store.CleaningTask) (store.CleaningTask, error) {
	return write(ctx, s, "update cleaning task", func(ctx context.Context) (store.CleaningTask, error) {
		return s.store.UpdateCleaningTask(ctx, task)
	})
}

func (s *Service) DeleteCleaningTask(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete cleaning task", deleted(func(ctx context.Context) error {
		return s.store.DeleteCleaningTask(ctx, id)
	}))
	return err
}

func (s *Service) Inventory(ctx context.Context) ([]store.InventoryItem, error) {
	return read(ctx, s, key("inventory", "all"), s.store.ListInventory)
}

// LowStock returns the inventory items at or below their reorder point.
func (s *Service) LowStock(ctx context.Context) ([]store.InventoryItem, error) {
	return read(ctx, s, key("inventory", "low"), func(ctx context.Context) ([]store.InventoryItem, error) {
		items, err := s.store.ListInventory(ctx)
		if err != nil {
			return nil, err
		}
		low := make([]store.InventoryItem, 0, len(items))
		for _, item := range items {
			if item.NeedsReorder() {
				low = append(low, item)
			}
		}
		return low, nil
	})
}

func (s *Service) InventoryItem(ctx context.Context, id string) (store.InventoryItem, error) {
	return read(ctx, s, key("inventory", id), func(ctx context.Context) (store.InventoryItem, error) {
		return s.store.GetInventoryItem(ctx, id)
	})
}

func (s *Service) CreateInventoryItem(ctx context.Context, item store.InventoryItem) (store.InventoryItem, error) {
	return write(ctx, s, "create inventory item", func(ctx context.Context) (store.InventoryItem, error) {
		return s.store.CreateInventoryItem(ctx, item)
	})
}

func (s *Service) UpdateInventoryItem(ctx context.Context, item store.InventoryItem) (store.InventoryItem, error) {
	return write(ctx, s, "update inventory item", func(ctx context.Context) (store.InventoryItem, error) {
		return s.store.UpdateInventoryItem(ctx, item)
	})
}

func (s *Service) DeleteInventoryItem(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete inventory item", deleted(func(ctx context.Context) error {
		return s.store.DeleteInventoryItem(ctx, id)
	}))
	return err
}

// Staff lists the rota, or only one shift when shift is set.
func (s *Service) Staff(ctx context.Context, shift store.Shift) ([]store.StaffMember, error) {
	if shift == "" {
		return read(ctx, s, key("staff", "all"), s.store.ListStaff)
	}
	return read(ctx, s, key("staff", "shift", string(shift)), func(ctx context.Context) ([]store.StaffMember, error) {
		return s.store.ListStaffByShift(ctx, shift)
	})
}

func (s *Service) StaffMember(ctx context.Context, id string) (store.StaffMember, error) {
	return read(ctx, s, key("staff", id), func(ctx context.Context) (store.StaffMember, error) {
		return s.store.GetStaffMember(ctx, id)
	})
}

// CreateStaffMember adds a housekeeper to the rota, available unless a status
// is given.
func (s *Service) CreateStaffMember(ctx context.Context, member store.StaffMember) (store.StaffMember, error) {
	if member.Status == "" {
		member.Status = store.StaffAvailable
	}
	return write(ctx, s, "create staff member", func(ctx context.Context) (store.StaffMember, error) {
		return s.store.CreateStaffMember(ctx, member)
	})
}

func (s *Service) UpdateStaffMember(ctx context.Context, member store.StaffMember) (store.StaffMember, error) {
	return write(ctx, s, "update staff member", func(ctx context.Context) (store.StaffMember, error) {
		return s.store.UpdateStaffMember(ctx, member)
	})
}

func (s *Service) DeleteStaffMember(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete staff member", deleted(func(ctx context.Context) error {
		return s.store.DeleteStaffMember(ctx, id)
	}))
	return err
}
