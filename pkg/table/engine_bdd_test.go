package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

var (
	errToggleNotRejected = errors.New("expected the last visibility toggle to be rejected")
	errNoEngine          = errors.New("table was not created in background")
)

type engineBDDContext struct {
	columns    []ColumnConfig
	storage    *memStorage
	storageKey string
	engine     *Engine
	lastToggle bool
}

func (c *engineBDDContext) reset() {
	c.columns = nil
	c.storage = newMemStorage()
	c.storageKey = ""
	c.engine = nil
	c.lastToggle = false
}

func (c *engineBDDContext) open() {
	c.engine = New(nil, c.columns, WithStorage(c.storageKey, c.storage))
}

func (c *engineBDDContext) aTableWithColumnsWhereIsHiddenByDefault(keys, hidden string) error {
	for _, k := range splitKeys(keys) {
		col := ColumnConfig{Key: k, Sortable: true, Hideable: true, Draggable: true}
		if k == hidden {
			col.DefaultVisible = Visible(false)
		}
		c.columns = append(c.columns, col)
	}
	c.open()
	return nil
}

func (c *engineBDDContext) theTablePersistsUnderStorageKey(key string) error {
	c.storageKey = key
	c.open()
	return nil
}

func (c *engineBDDContext) iOpenTheTableAgain() error {
	c.open()
	return nil
}

func (c *engineBDDContext) iToggleTheVisibilityOf(key string) error {
	if c.engine == nil {
		return errNoEngine
	}
	c.lastToggle = c.engine.ToggleColumnVisibility(key)
	return nil
}

func (c *engineBDDContext) theLastToggleShouldHaveBeenRejected() error {
	if c.lastToggle {
		return errToggleNotRejected
	}
	return nil
}

func (c *engineBDDContext) iSortBy(key string) error {
	c.engine.HandleSort(key)
	return nil
}

func (c *engineBDDContext) iMoveColumnOver(active, over string) error {
	c.engine.ReorderColumns(active, over)
	return nil
}

func (c *engineBDDContext) iResetTheTableToDefaults() error {
	c.engine.ResetToDefaults()
	return nil
}

func (c *engineBDDContext) theVisibleColumnsShouldBe(keys string) error {
	got := keysOf(c.engine.VisibleColumns())
	if want := splitKeys(keys); !slices.Equal(got, want) {
		return fmt.Errorf("visible columns = %v, want %v", got, want)
	}
	return nil
}

func (c *engineBDDContext) theColumnOrderShouldBe(keys string) error {
	got := c.engine.ColumnOrder()
	if want := splitKeys(keys); !slices.Equal(got, want) {
		return fmt.Errorf("column order = %v, want %v", got, want)
	}
	return nil
}

func (c *engineBDDContext) theSortStateShouldBe(column, direction string) error {
	want := SortState{Column: column, Direction: SortDirection(direction)}
	if got := c.engine.SortState(); got != want {
		return fmt.Errorf("sort state = %+v, want %+v", got, want)
	}
	return nil
}

func (c *engineBDDContext) theTableShouldBeUnsorted() error {
	if got := c.engine.SortState(); got.Active() {
		return fmt.Errorf("sort state = %+v, want unsorted", got)
	}
	return nil
}

func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func InitializeEngineScenario(ctx *godog.ScenarioContext) {
	c := &engineBDDContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, nil
	})

	ctx.Step(`^a table with columns "([^"]*)" where "([^"]*)" is hidden by default$`, c.aTableWithColumnsWhereIsHiddenByDefault)
	ctx.Step(`^the table persists under storage key "([^"]*)"$`, c.theTablePersistsUnderStorageKey)
	ctx.Step(`^I open the table again$`, c.iOpenTheTableAgain)
	ctx.Step(`^I toggle the visibility of "([^"]*)"$`, c.iToggleTheVisibilityOf)
	ctx.Step(`^the last toggle should have been rejected$`, c.theLastToggleShouldHaveBeenRejected)
	ctx.Step(`^I sort by "([^"]*)"$`, c.iSortBy)
	ctx.Step(`^I move column "([^"]*)" over "([^"]*)"$`, c.iMoveColumnOver)
	ctx.Step(`^I reset the table to defaults$`, c.iResetTheTableToDefaults)
	ctx.Step(`^the visible columns should be "([^"]*)"$`, c.theVisibleColumnsShouldBe)
	ctx.Step(`^the column order should be "([^"]*)"$`, c.theColumnOrderShouldBe)
	ctx.Step(`^the sort state should be "([^"]*)" "([^"]*)"$`, c.theSortStateShouldBe)
	ctx.Step(`^the table should be unsorted$`, c.theTableShouldBeUnsorted)
}

func TestEngineFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeEngineScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/table_engine.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
