package palette

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func TestForExtensionIsDeterministic(testingInstance *testing.T) {
	firstAssigner := NewAssigner()
	secondAssigner := NewAssigner()
	for _, extension := range []string{".py", ".zig", ".tar", ".weird-ext", ".x"} {
		firstColor := firstAssigner.ForExtension(extension)
		assert.Equal(testingInstance, firstColor, firstAssigner.ForExtension(extension), extension)
		assert.Equal(testingInstance, firstColor, secondAssigner.ForExtension(extension), extension)
		assert.Equal(testingInstance, firstColor, ColorForExtension(extension), extension)
		assert.Regexp(testingInstance, hexColorPattern, firstColor)
	}
}

func TestForExtensionNormalizes(testingInstance *testing.T) {
	assigner := NewAssigner()
	assert.Equal(testingInstance, assigner.ForExtension(".py"), assigner.ForExtension("PY"))
	assert.Equal(testingInstance, assigner.ForExtension(".Zig"), assigner.ForExtension("zig"))
}

func TestForExtensionWithoutExtension(testingInstance *testing.T) {
	assert.Equal(testingInstance, NoExtensionColor, NewAssigner().ForExtension(""))
	assert.Equal(testingInstance, NoExtensionColor, NewAssigner().ForExtension("   "))
}

func TestHashedColorsStayReadable(testingInstance *testing.T) {
	for index := 0; index < 200; index++ {
		hexColor := ColorForExtension(fmt.Sprintf(".ext%d", index))
		parsedColor, parseError := colorful.Hex(hexColor)
		require.NoError(testingInstance, parseError)
		_, hsvSaturation, hsvValue := parsedColor.Hsv()
		assert.InDelta(testingInstance, saturation, hsvSaturation, 0.02, hexColor)
		assert.InDelta(testingInstance, value, hsvValue, 0.02, hexColor)
	}
}

func TestForExtensionConcurrentUse(testingInstance *testing.T) {
	assigner := NewAssigner()
	expected := ColorForExtension(".concurrent")
	var waitGroup sync.WaitGroup
	for worker := 0; worker < 16; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			assert.Equal(testingInstance, expected, assigner.ForExtension(".concurrent"))
		}()
	}
	waitGroup.Wait()
}
