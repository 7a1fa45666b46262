package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/l0p7/innkeeper/internal/store"
)

// decodeStrings reads a JSON string array column; empty and null read as an
// empty list.
func decodeStrings(raw, what string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	return encodeJSON(values)
}

// cleaning tasks

const cleaningTaskColumns = `id, name, assigned_staff, status, created_at, updated_at`

func scanCleaningTask(row rowScanner) (store.CleaningTask, error) {
	var (
		task      store.CleaningTask
		staff     string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&task.ID, &task.Name, &staff, &task.Status, &createdAt, &updatedAt); err != nil {
		return store.CleaningTask{}, err
	}
	assigned, err := decodeStrings(staff, "assigned staff")
	if err != nil {
		return store.CleaningTask{}, err
	}
	task.AssignedStaff = assigned
	task.CreatedAt = fromMillis(createdAt)
	task.UpdatedAt = fromMillis(updatedAt)
	return task, nil
}

// ListCleaningTasks returns every cleaning task, newest first.
func (s *Store) ListCleaningTasks(ctx context.Context) ([]store.CleaningTask, error) {
	return queryAll(ctx, s, "list cleaning tasks", scanCleaningTask,
		`SELECT `+cleaningTaskColumns+` FROM cleaning_tasks ORDER BY created_at DESC, id`)
}

func (s *Store) GetCleaningTask(ctx context.Context, id string) (store.CleaningTask, error) {
	if err := ctx.Err(); err != nil {
		return store.CleaningTask{}, err
	}
	if err := requireID(id); err != nil {
		return store.CleaningTask{}, err
	}
	task, err := scanCleaningTask(s.sqlDB.QueryRowContext(ctx, `SELECT `+cleaningTaskColumns+` FROM cleaning_tasks WHERE id = ?`, id))
	if err != nil {
		return store.CleaningTask{}, translate("get cleaning task", err)
	}
	return task, nil
}

func (s *Store) CreateCleaningTask(ctx context.Context, task store.CleaningTask) (store.CleaningTask, error) {
	if err := ctx.Err(); err != nil {
		return store.CleaningTask{}, err
	}
	if err := task.Validate(); err != nil {
		return store.CleaningTask{}, err
	}
	staff, err := encodeStrings(task.AssignedStaff)
	if err != nil {
		return store.CleaningTask{}, fmt.Errorf("sqlite: encode assigned staff: %w", err)
	}
	task.ID = s.newID()
	task.CreatedAt = s.now()

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO cleaning_tasks (`+cleaningTaskColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, staff, string(task.Status), toMillis(task.CreatedAt), toMillis(task.CreatedAt))
	if err != nil {
		return store.CleaningTask{}, translate("create cleaning task", err)
	}
	return s.GetCleaningTask(ctx, task.ID)
}

func (s *Store) UpdateCleaningTask(ctx context.Context, task store.CleaningTask) (store.CleaningTask, error) {
	if err := ctx.Err(); err != nil {
		return store.CleaningTask{}, err
	}
	if err := requireID(task.ID); err != nil {
		return store.CleaningTask{}, err
	}
	if err := task.Validate(); err != nil {
		return store.CleaningTask{}, err
	}
	staff, err := encodeStrings(task.AssignedStaff)
	if err != nil {
		return store.CleaningTask{}, fmt.Errorf("sqlite: encode assigned staff: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE cleaning_tasks SET name = ?, assigned_staff = ?, status = ?, updated_at = ? WHERE id = ?`,
		task.Name, staff, string(task.Status), toMillis(s.now()), task.ID)
	if err != nil {
		return store.CleaningTask{}, translate("update cleaning task", err)
	}
	if err := expectOne("update cleaning task", res); err != nil {
		return store.CleaningTask{}, err
	}
	return s.GetCleaningTask(ctx, task.ID)
}

func (s *Store) DeleteCleaningTask(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "cleaning task", `DELETE FROM cleaning_tasks WHERE id = ?`, id)
}

// inventory

const inventoryColumns = `id, name, quantity, unit, reorder_point, created_at, updated_at`

func scanInventoryItem(row rowScanner) (store.InventoryItem, error) {
	var (
		item      store.InventoryItem
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Quantity, &item.Unit, &item.ReorderPoint, &createdAt, &updatedAt); err != nil {
		return store.InventoryItem{}, err
	}
	item.CreatedAt = fromMillis(createdAt)
	item.UpdatedAt = fromMillis(updatedAt)
	return item, nil
}

// ListInventory returns every stocked item ordered by name.
func (s *Store) ListInventory(ctx context.Context) ([]store.InventoryItem, error) {
	return queryAll(ctx, s, "list inventory", scanInventoryItem,
		`SELECT `+inventoryColumns+` FROM inventory ORDER BY name`)
}

func (s *Store) GetInventoryItem(ctx context.Context, id string) (store.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return store.InventoryItem{}, err
	}
	if err := requireID(id); err != nil {
		return store.InventoryItem{}, err
	}
	item, err := scanInventoryItem(s.sqlDB.QueryRowContext(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`, id))
	if err != nil {
		return store.InventoryItem{}, translate("get inventory item", err)
	}
	return item, nil
}

// CreateInventoryItem inserts item. Item names are unique.
func (s *Store) CreateInventoryItem(ctx context.Context, item store.InventoryItem) (store.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return store.InventoryItem{}, err
	}
	if err := item.Validate(); err != nil {
		return store.InventoryItem{}, err
	}
	item.ID = s.newID()
	item.CreatedAt = s.now()

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO inventory (`+inventoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Quantity, item.Unit, item.ReorderPoint, toMillis(item.CreatedAt), toMillis(item.CreatedAt))
	if err != nil {
		return store.InventoryItem{}, translate("create inventory item", err)
	}
	return s.GetInventoryItem(ctx, item.ID)
}

func (s *Store) UpdateInventoryItem(ctx context.Context, item store.InventoryItem) (store.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return store.InventoryItem{}, err
	}
	if err := requireID(item.ID); err != nil {
		return store.InventoryItem{}, err
	}
	if err := item.Validate(); err != nil {
		return store.InventoryItem{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE inventory SET name = ?, quantity = ?, unit = ?, reorder_point = ?, updated_at = ? WHERE id = ?`,
		item.Name, item.Quantity, item.Unit, item.ReorderPoint, toMillis(s.now()), item.ID)
	if err != nil {
		return store.InventoryItem{}, translate("update inventory item", err)
	}
	if err := expectOne("update inventory item", res); err != nil {
		return store.InventoryItem{}, err
	}
	return s.GetInventoryItem(ctx, item.ID)
}

func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "inventory item", `DELETE FROM inventory WHERE id = ?`, id)
}

// staff

const staffColumns = `id, first_name, last_name, shift, status, assigned_rooms, created_at, updated_at`

func scanStaffMember(row rowScanner) (store.StaffMember, error) {
	var (
		member    store.StaffMember
		rooms     string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&member.ID, &member.FirstName, &member.LastName, &member.Shift, &member.Status, &rooms, &createdAt, &updatedAt); err != nil {
		return store.StaffMember{}, err
	}
	assigned, err := decodeStrings(rooms, "assigned rooms")
	if err != nil {
		return store.StaffMember{}, err
	}
	member.AssignedRooms = assigned
	member.CreatedAt = fromMillis(createdAt)
	member.UpdatedAt = fromMillis(updatedAt)
	return member, nil
}

// ListStaff returns the rota ordered by last then first name.
func (s *Store) ListStaff(ctx context.Context) ([]store.StaffMember, error) {
	return queryAll(ctx, s, "list staff", scanStaffMember,
		`SELECT `+staffColumns+` FROM staff ORDER BY last_name, first_name, id`)
}

// ListStaffByShift returns the staff working one shift.
func (s *Store) ListStaffByShift(ctx context.Context, shift store.Shift) ([]store.StaffMember, error) {
	if err := shift.Validate(); err != nil {
		return nil, err
	}
	return queryAll(ctx, s, "list staff by shift", scanStaffMember,
		`SELECT `+staffColumns+` FROM staff WHERE shift = ? ORDER BY last_name, first_name, id`,
		string(shift))
}

func (s *Store) GetStaffMember(ctx context.Context, id string) (store.StaffMember, error) {
	if err := ctx.Err(); err != nil {
		return store.StaffMember{}, err
	}
	if err := requireID(id); err != nil {
		return store.StaffMember{}, err
	}
	member, err := scanStaffMember(s.sqlDB.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = ?`, id))
	if err != nil {
		return store.StaffMember{}, translate("get staff member", err)
	}
	return member, nil
}

func (s *Store) CreateStaffMember(ctx context.Context, member store.StaffMember) (store.StaffMember, error) {
	if err := ctx.Err(); err != nil {
		return store.StaffMember{}, err
	}
	if err := member.Validate(); err != nil {
		return store.StaffMember{}, err
	}
	rooms, err := encodeStrings(member.AssignedRooms)
	if err != nil {
		return store.StaffMember{}, fmt.Errorf("sqlite: encode assigned rooms: %w", err)
	}
	member.ID = s.newID()
	member.CreatedAt = s.now()

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO staff (`+staffColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.FirstName, member.LastName, string(member.Shift), string(member.Status), rooms,
		toMillis(member.CreatedAt), toMillis(member.CreatedAt))
	if err != nil {
		return store.StaffMember{}, translate("create staff member", err)
	}
	return s.GetStaffMember(ctx, member.ID)
}

func (s *Store) UpdateStaffMember(ctx context.Context, member store.StaffMember) (store.StaffMember, error) {
	if err := ctx.Err(); err != nil {
		return store.StaffMember{}, err
	}
	if err := requireID(member.ID); err != nil {
		return store.StaffMember{}, err
	}
	if err := member.Validate(); err != nil {
		return store.StaffMember{}, err
	}
	rooms, err := encodeStrings(member.AssignedRooms)
	if err != nil {
		return store.StaffMember{}, fmt.Errorf("sqlite: encode assigned rooms: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE staff
		    SET first_name = ?, last_name = ?, shift = ?, status = ?, assigned_rooms = ?, updated_at = ?
		  WHERE id = ?`,
		member.FirstName, member.LastName, string(member.Shift), string(member.Status), rooms,
		toMillis(s.now()), member.ID)
	if err != nil {
		return store.StaffMember{}, translate("update staff member", err)
	}
	if err := expectOne("update staff member", res); err != nil {
		return store.StaffMember{}, err
	}
	return s.GetStaffMember(ctx, member.ID)
}

func (s *Store) DeleteStaffMember(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "staff member", `DELETE FROM staff WHERE id = ?`, id)
}

func (s *Store) deleteByID(ctx context.Context, what, query, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, query, id)
	if err != nil {
		return translate("delete "+what, err)
	}
	return expectOne("delete "+what, res)
}
