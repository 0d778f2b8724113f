package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	s := New()
	assert.Equal(t, "00", s.Department)
	assert.False(t, s.HasDepartment())
	assert.False(t, s.HasYear())
	assert.NotNil(t, s.Classes)
	assert.Empty(t, s.Classes)
}

func TestSelectDepartment(t *testing.T) {
	tests := []struct {
		input string
		want  string
		has   bool
	}{
		{"1", "01", true},
		{"01", "01", true},
		{"2a", "2A", true},
		{"", "00", false},
		{"00", "00", false},
	}
	for _, tt := range tests {
		s := New()
		s.SelectDepartment(tt.input)
		if s.Department != tt.want || s.HasDepartment() != tt.has {
			t.Errorf("SelectDepartment(%q) = %q (has=%v), want %q (has=%v)",
				tt.input, s.Department, s.HasDepartment(), tt.want, tt.has)
		}
	}
}

func TestSelectClasses(t *testing.T) {
	s := New()
	s.SelectClasses([]string{"Vols", " Coups ", "", "Vols"})
	assert.Equal(t, []string{"Coups", "Vols"}, s.Classes)
	assert.True(t, s.ClassSet()["Coups"])

	s.SelectClasses(nil)
	assert.Empty(t, s.Classes)
}

func TestSelectYear(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{2022, 2022},
		{22, 2022},
		{7, 2007},
		{0, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		s := New()
		s.SelectYear(tt.input)
		if s.Year != tt.want || s.HasYear() != (tt.want > 0) {
			t.Errorf("SelectYear(%d) = %d, want %d", tt.input, s.Year, tt.want)
		}
	}

	s := New()
	s.SelectYear(22)
	s.SelectYear(s.Year)
	assert.Equal(t, 2022, s.Year, "applying twice keeps the year")
}

func TestSelectYears(t *testing.T) {
	s := New()
	assert.Empty(t, s.ScatterYears())

	s.SelectYear(2021)
	assert.Equal(t, []int{2021}, s.ScatterYears(), "falls back to the single year")

	s.SelectYears([]int{2022, 16, 0, 2016, -1, 22})
	assert.Equal(t, []int{2016, 2022}, s.Years)
	assert.Equal(t, []int{2016, 2022}, s.ScatterYears())
	assert.Equal(t, 2021, s.Year, "single year untouched")

	s.ScatterYears()[0] = 1999
	assert.Equal(t, 2016, s.Years[0])

	s.SelectYears(nil)
	assert.NotNil(t, s.Years)
	assert.Equal(t, []int{2021}, s.ScatterYears())
}

func TestClone_IsIndependent(t *testing.T) {
	s := New()
	s.SelectClasses([]string{"Vols"})
	s.SelectYears([]int{2021})
	c := s.Clone()
	c.SelectDepartment("75")
	c.Classes[0] = "Coups"
	c.Years[0] = 2016
	assert.Equal(t, "00", s.Department)
	assert.Equal(t, []string{"Vols"}, s.Classes)
	assert.Equal(t, []int{2021}, s.Years)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	st := NewStore(0)
	idA, a := st.Create()
	idB, b := st.Create()
	require.NotEqual(t, idA, idB)

	a.SelectDepartment("13")
	assert.Equal(t, "00", b.Department)

	got, ok := st.Get(idA)
	require.True(t, ok)
	assert.Equal(t, "13", got.Department)

	_, ok = st.Get("unknown")
	assert.False(t, ok)

	st.Delete(idA)
	assert.Equal(t, 1, st.Len())
}

func TestStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore(time.Hour)
	st.now = func() time.Time { return now }

	idOld, _ := st.Create()
	now = now.Add(30 * time.Minute)
	idKept, _ := st.Create()

	now = now.Add(45 * time.Minute)
	_, ok := st.Get(idOld)
	assert.False(t, ok, "session idle for 75m should have expired")

	_, ok = st.Get(idKept)
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	st.Create()
	assert.Equal(t, 1, st.Len(), "sweep on create should drop idle sessions")
}

func TestStore_Update(t *testing.T) {
	st := NewStore(0)
	id, _ := st.Create()

	got, ok := st.Update(id, func(s *Selection) { s.SelectDepartment("2a") })
	require.True(t, ok)
	assert.Equal(t, "2A", got.Department)

	got.SelectDepartment("75")
	again, ok := st.Update(id, nil)
	require.True(t, ok)
	assert.Equal(t, "2A", again.Department, "Update returns a copy")

	_, ok = st.Update("unknown", func(s *Selection) { t.Fatal("fn called for unknown session") })
	assert.False(t, ok)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	st := NewStore(0)
	id, _ := st.Create()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			st.Update(id, func(s *Selection) { s.SelectYear(year) })
		}(2000 + i)
	}
	wg.Wait()

	got, ok := st.Update(id, nil)
	require.True(t, ok)
	assert.GreaterOrEqual(t, got.Year, 2000)
}
