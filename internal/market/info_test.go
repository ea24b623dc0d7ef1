package market

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceDefaultsToZero(t *testing.T) {
	info := NewInfo()
	assert.Equal(t, 0.0, info.Price("coal", "usa", 0))

	info.SetPrice("coal", "usa", 0, 2.5)
	assert.Equal(t, 2.5, info.Price("coal", "usa", 0))
	// Other keys are unaffected.
	assert.Equal(t, 0.0, info.Price("coal", "usa", 1))
	assert.Equal(t, 0.0, info.Price("coal", "china", 0))
}

func TestValueSetAndAccumulate(t *testing.T) {
	info := NewInfo()

	_, ok := info.Value("gas", "usa", 2, InfoKeyCalDemand)
	assert.False(t, ok)

	info.AddValue("gas", "usa", 2, InfoKeyCalDemand, 10)
	info.AddValue("gas", "usa", 2, InfoKeyCalDemand, 5)
	v, ok := info.Value("gas", "usa", 2, InfoKeyCalDemand)
	assert.True(t, ok)
	assert.Equal(t, 15.0, v)

	info.SetValue("gas", "usa", 2, InfoKeyCalDemand, 3)
	v, _ = info.Value("gas", "usa", 2, InfoKeyCalDemand)
	assert.Equal(t, 3.0, v)
}

func TestConcurrentRegionsDoNotInterfere(t *testing.T) {
	info := NewInfo()
	regions := []string{"usa", "china", "india", "eu"}

	var wg sync.WaitGroup
	for _, region := range regions {
		wg.Add(1)
		go func(region string) {
			defer wg.Done()
			for p := 0; p < 100; p++ {
				info.AddValue("oil", region, p%4, "calDemand", 1)
			}
		}(region)
	}
	wg.Wait()

	for _, region := range regions {
		total := 0.0
		for p := 0; p < 4; p++ {
			v, _ := info.Value("oil", region, p, "calDemand")
			total += v
		}
		assert.Equal(t, 100.0, total, "region %s", region)
	}
}
