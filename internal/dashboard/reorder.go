package dashboard

import (
	"fmt"

	"github.com/julianstephens/famtrack/internal/models"
)

// Move moves the habit at index from to index to and assigns a dense
// 0..N-1 displayOrder to every habit. habits must already be sorted by
// displayOrder; it is not modified.
func Move(habits []models.Habit, from, to int) ([]models.Habit, []models.HabitOrder, error) {
	n := len(habits)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, nil, fmt.Errorf("reorder index out of range: %d -> %d (have %d habits)", from, to, n)
	}

	out := make([]models.Habit, 0, n)
	out = append(out, habits[:from]...)
	out = append(out, habits[from+1:]...)
	moved := habits[from]
	out = append(out[:to], append([]models.Habit{moved}, out[to:]...)...)

	orders := make([]models.HabitOrder, n)
	for i := range out {
		out[i].DisplayOrder = i
		orders[i] = models.HabitOrder{ID: out[i].ID, DisplayOrder: i}
	}
	return out, orders, nil
}
