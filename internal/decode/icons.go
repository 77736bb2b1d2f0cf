package decode

// Icon keys for condition code families. The values are symbol names the
// presentation layer can map directly to images.
const (
	IconThunderstorm = "cloud.bolt"
	IconDrizzle      = "cloud.drizzle"
	IconRain         = "cloud.rain"
	IconSnow         = "cloud.snow"
	IconFog          = "cloud.fog"
	IconClear        = "sun.max"
	IconClouds       = "cloud"
	IconUnknown      = "unknown"
)

type codeRange struct {
	lo, hi int
	icon   string
}

// conditionRanges follows the OpenWeatherMap condition code groups.
var conditionRanges = []codeRange{
	{200, 232, IconThunderstorm},
	{300, 321, IconDrizzle},
	{500, 531, IconRain},
	{600, 622, IconSnow},
	{701, 781, IconFog},
	{800, 800, IconClear},
	{801, 804, IconClouds},
}

// IconKey maps a condition code to its icon key. Codes outside every known
// group map to IconUnknown.
func IconKey(code int) string {
	for _, r := range conditionRanges {
		if code >= r.lo && code <= r.hi {
			return r.icon
		}
	}
	return IconUnknown
}
