package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/l0p7/innkeeper/internal/records"
	"github.com/l0p7/innkeeper/internal/store"
)

// settings

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.records.Settings(r.Context())
	h.reply(w, r, http.StatusOK, settings, err)
}

func (h *handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.HotelSettings
	if err := decodeBody(r, &settings); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.records.UpdateSettings(r.Context(), settings)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) calculateTax(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: amount must be a number", store.ErrInvalid))
		return
	}
	charge, err := h.records.CalculateTax(r.Context(), amount)
	h.reply(w, r, http.StatusOK, charge, err)
}

// quotations

func (h *handler) listQuotations(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.records.Quotations(r.Context())
	h.reply(w, r, http.StatusOK, quotations, err)
}

func (h *handler) guestQuotations(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.records.QuotationsForGuest(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, quotations, err)
}

func (h *handler) getQuotation(w http.ResponseWriter, r *http.Request) {
	quotation, err := h.records.Quotation(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, quotation, err)
}

func (h *handler) createQuotation(w http.ResponseWriter, r *http.Request) {
	var req records.QuotationRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateQuotation(r.Context(), req)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateQuotation(w http.ResponseWriter, r *http.Request) {
	var quotation store.Quotation
	if err := decodeBody(r, &quotation); err != nil {
		h.writeError(w, r, err)
		return
	}
	quotation.ID = r.PathValue("id")
	updated, err := h.records.UpdateQuotation(r.Context(), quotation)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) setQuotationStatus(w http.ResponseWriter, r *http.Request) {
	var change statusChange[store.QuotationStatus]
	if err := decodeBody(r, &change); err != nil {
		h.writeError(w, r, err)
		return
	}
	quotation, err := h.records.SetQuotationStatus(r.Context(), r.PathValue("id"), change.Status)
	h.reply(w, r, http.StatusOK, quotation, err)
}

func (h *handler) deleteQuotation(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteQuotation(r.Context(), r.PathValue("id")))
}

// tasks

// listTasks serves every task, ?category= for one category, or ?q= for a
// title and description search.
func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if q := query.Get("q"); q != "" {
		tasks, err := h.records.SearchTasks(r.Context(), q)
		h.reply(w, r, http.StatusOK, tasks, err)
		return
	}
	tasks, err := h.records.Tasks(r.Context(), store.TaskCategory(query.Get("category")))
	h.reply(w, r, http.StatusOK, tasks, err)
}

func (h *handler) taskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.records.TaskStats(r.Context())
	h.reply(w, r, http.StatusOK, stats, err)
}

func (h *handler) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.records.Task(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, task, err)
}

func (h *handler) createTask(w http.ResponseWriter, r *http.Request) {
	var task store.Task
	if err := decodeBody(r, &task); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateTask(r.Context(), task)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var task store.Task
	if err := decodeBody(r, &task); err != nil {
		h.writeError(w, r, err)
		return
	}
	task.ID = r.PathValue("id")
	updated, err := h.records.UpdateTask(r.Context(), task)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteTask(r.Context(), r.PathValue("id")))
}

// housekeeping

func (h *handler) listCleaningTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.records.CleaningTasks(r.Context())
	h.reply(w, r, http.StatusOK, tasks, err)
}

func (h *handler) getCleaningTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.records.CleaningTask(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, task, err)
}

func (h *handler) createCleaningTask(w http.ResponseWriter, r *http.Request) {
	var task store.CleaningTask
	if err := decodeBody(r, &task); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateCleaningTask(r.Context(), task)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateCleaningTask(w http.ResponseWriter, r *http.Request) {
	var task store.CleaningTask
	if err := decodeBody(r, &task); err != nil {
		h.writeError(w, r, err)
		return
	}
	task.ID = r.PathValue("id")
	updated, err := h.records.UpdateCleaningTask(r.Context(), task)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) deleteCleaningTask(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteCleaningTask(r.Context(), r.PathValue("id")))
}

// listInventory serves every item, or with ?low_stock=true only those due
// for reordering.
func (h *handler) listInventory(w http.ResponseWriter, r *http.Request) {
	lowOnly := false
	if raw := r.URL.Query().Get("low_stock"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: low_stock must be true or false", store.ErrInvalid))
			return
		}
		lowOnly = parsed
	}
	var (
		items []store.InventoryItem
		err   error
	)
	if lowOnly {
		items, err = h.records.LowStock(r.Context())
	} else {
		items, err = h.records.Inventory(r.Context())
	}
	h.reply(w, r, http.StatusOK, items, err)
}

func (h *handler) getInventoryItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.records.InventoryItem(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, item, err)
}

func (h *handler) createInventoryItem(w http.ResponseWriter, r *http.Request) {
	var item store.InventoryItem
	if err := decodeBody(r, &item); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateInventoryItem(r.Context(), item)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var item store.InventoryItem
	if err := decodeBody(r, &item); err != nil {
		h.writeError(w, r, err)
		return
	}
	item.ID = r.PathValue("id")
	updated, err := h.records.UpdateInventoryItem(r.Context(), item)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) deleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteInventoryItem(r.Context(), r.PathValue("id")))
}

func (h *handler) listStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.records.Staff(r.Context(), store.Shift(r.URL.Query().Get("shift")))
	h.reply(w, r, http.StatusOK, staff, err)
}

func (h *handler) getStaffMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.records.StaffMember(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, member, err)
}

func (h *handler) createStaffMember(w http.ResponseWriter, r *http.Request) {
	var member store.StaffMember
	if err := decodeBody(r, &member); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateStaffMember(r.Context(), member)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateStaffMember(w http.ResponseWriter, r *http.Request) {
	var member store.StaffMember
	if err := decodeBody(r, &member); err != nil {
		h.writeError(w, r, err)
		return
	}
	member.ID = r.PathValue("id")
	updated, err := h.records.UpdateStaffMember(r.Context(), member)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) deleteStaffMember(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteStaffMember(r.Context(), r.PathValue("id")))
}
