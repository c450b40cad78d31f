package pixel

// RGB332 bit layout: RRRGGGBB.
const (
	RedShift   = 5
	GreenShift = 2
	BlueShift  = 0

	RedMask   byte = 0xE0
	GreenMask byte = 0x1C
	BlueMask  byte = 0x03

	// RedLevels, GreenLevels, BlueLevels are the number of representable
	// levels per channel.
	RedLevels   = 8
	GreenLevels = 8
	BlueLevels  = 4
)

// Predefined packed colors.
const (
	Black  byte = 0x00
	White  byte = 0xFF
	Red    byte = RedMask
	Green  byte = GreenMask
	Blue   byte = BlueMask
	Yellow byte = RedMask | GreenMask
)

// ScaleLevel scales v from [0, srcMax] into [0, levels-1] using floor
// division, saturating at levels-1.
func ScaleLevel(v, srcMax, levels int) int {
	if v <= 0 || srcMax <= 0 || levels <= 1 {
		return 0
	}
	l := v * (levels - 1) / srcMax
	if l > levels-1 {
		l = levels - 1
	}
	return l
}

// PackLevels packs channel levels into one RGB332 byte. Levels beyond the
// channel range are saturated.
func PackLevels(r, g, b int) byte {
	r, g, b = clampLevel(r, RedLevels), clampLevel(g, GreenLevels), clampLevel(b, BlueLevels)
	return byte(r)<<RedShift | byte(g)<<GreenShift | byte(b)<<BlueShift
}

// RGB332 packs 8-bit channel values into one RGB332 byte.
func RGB332(r, g, b uint8) byte {
	return PackLevels(
		ScaleLevel(int(r), 0xff, RedLevels),
		ScaleLevel(int(g), 0xff, GreenLevels),
		ScaleLevel(int(b), 0xff, BlueLevels),
	)
}

// Levels unpacks an RGB332 byte into channel levels.
func Levels(c byte) (r, g, b int) {
	return int(c&RedMask) >> RedShift, int(c&GreenMask) >> GreenShift, int(c&BlueMask) >> BlueShift
}

func clampLevel(v, levels int) int {
	if v < 0 {
		return 0
	}
	if v >= levels {
		return levels - 1
	}
	return v
}
