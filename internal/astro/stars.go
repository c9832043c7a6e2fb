package astro

import (
	"math"
	"strconv"
	"time"
)

// Star represents a cataloged star with position and brightness.
type Star struct {
	HIP    int     // Hipparcos catalog number
	Name   string  // Common name (e.g., "Sirius", "Vega"), may be empty
	RAdeg  float64 // Right Ascension in degrees (J2000)
	DecDeg float64 // Declination in degrees (J2000)
	Mag    float64 // Apparent visual magnitude (lower = brighter)
}

// ID returns the stable object id of the star, e.g. "HIP32349".
func (s Star) ID() string {
	return "HIP" + strconv.Itoa(s.HIP)
}

// Label returns the display name, falling back to the catalog id.
func (s Star) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID()
}

// OfDate returns the star's mean equatorial position precessed from J2000
// to the equinox of t (rigorous ζ, z, θ rotation; proper motion ignored).
func (s Star) OfDate(t time.Time) SkyCoord {
	ra, dec := PrecessFromJ2000(s.RAdeg, s.DecDeg, t)
	return SkyCoord{RAdeg: ra, DecDeg: dec}
}

// PrecessFromJ2000 precesses a J2000 position to the mean equinox of t.
func PrecessFromJ2000(raDeg, decDeg float64, t time.Time) (float64, float64) {
	T := centuriesSinceJ2000(t)
	arcsec := func(a, b, c float64) float64 {
		return degToRad((a*T + b*T*T + c*T*T*T) / 3600)
	}
	zeta := arcsec(2306.2181, 0.30188, 0.017998)
	z := arcsec(2306.2181, 1.09468, 0.018203)
	theta := arcsec(2004.3109, -0.42665, -0.041833)

	ra := degToRad(raDeg) + zeta
	dec := degToRad(decDeg)

	a := math.Cos(dec) * math.Sin(ra)
	b := math.Cos(theta)*math.Cos(dec)*math.Cos(ra) - math.Sin(theta)*math.Sin(dec)
	c := math.Sin(theta)*math.Cos(dec)*math.Cos(ra) + math.Cos(theta)*math.Sin(dec)

	return normalizeAngle360(radToDeg(math.Atan2(a, b) + z)), radToDeg(math.Asin(clampUnit(c)))
}

// StarCatalog holds a collection of stars for rendering.
type StarCatalog struct {
	Stars []Star
}

// DefaultStarCatalog returns the built-in bright star list (mag < 4.5)
// covering the stars used by the default constellation figures.
// Coordinates are J2000 epoch.
func DefaultStarCatalog() StarCatalog {
	stars := make([]Star, len(defaultStars))
	copy(stars, defaultStars)
	return StarCatalog{Stars: stars}
}

// defaultStars is ordered roughly by magnitude (brightest first).
var defaultStars = []Star{
	// Magnitude < 0.5
	{32349, "Sirius", 101.287, -16.716, -1.46},
	{30438, "Canopus", 95.988, -52.696, -0.74},
	{71683, "Rigil Kentaurus", 219.902, -60.834, -0.27},
	{69673, "Arcturus", 213.915, 19.182, -0.05},
	{91262, "Vega", 279.235, 38.784, 0.03},
	{24608, "Capella", 79.172, 45.998, 0.08},
	{24436, "Rigel", 78.634, -8.202, 0.13},
	{37279, "Procyon", 114.826, 5.225, 0.34},
	{7588, "Achernar", 24.429, -57.237, 0.46},

	// Magnitude 0.5-1.0
	{27989, "Betelgeuse", 88.793, 7.407, 0.50},
	{68702, "Hadar", 210.956, -60.373, 0.61},
	{97649, "Altair", 297.696, 8.868, 0.76},
	{60718, "Acrux", 186.650, -63.099, 0.76},
	{21421, "Aldebaran", 68.980, 16.509, 0.85},
	{80763, "Antares", 247.352, -26.432, 0.96},
	{65474, "Spica", 201.298, -11.161, 0.97},

	// Magnitude 1.0-1.5
	{37826, "Pollux", 116.329, 28.026, 1.14},
	{113368, "Fomalhaut", 344.413, -29.622, 1.16},
	{102098, "Deneb", 310.358, 45.280, 1.25},
	{62434, "Mimosa", 191.930, -59.689, 1.25},
	{49669, "Regulus", 152.093, 11.967, 1.35},

	// Magnitude 1.5-2.0
	{33579, "Adhara", 104.656, -28.972, 1.50},
	{36850, "Castor", 113.650, 31.889, 1.58},
	{61084, "Gacrux", 187.791, -57.113, 1.63},
	{85927, "Shaula", 263.402, -37.104, 1.63},
	{25336, "Bellatrix", 81.283, 6.350, 1.64},
	{25428, "Elnath", 81.573, 28.608, 1.65},
	{45238, "Miaplacidus", 138.300, -69.717, 1.68},
	{26311, "Alnilam", 84.053, -1.202, 1.69},
	{109268, "Alnair", 332.058, -46.961, 1.74},
	{26727, "Alnitak", 85.190, -1.943, 1.77},
	{62956, "Alioth", 193.507, 55.960, 1.77},
	{54061, "Dubhe", 165.932, 61.751, 1.79},
	{15863, "Mirfak", 51.081, 49.861, 1.79},
	{34444, "Wezen", 107.098, -26.393, 1.84},
	{90185, "Kaus Australis", 276.043, -34.384, 1.85},
	{41037, "Avior", 125.629, -59.509, 1.86},
	{67301, "Alkaid", 206.885, 49.313, 1.86},
	{86228, "Sargas", 264.330, -42.998, 1.87},
	{28360, "Menkalinan", 89.882, 44.948, 1.90},
	{82273, "Atria", 252.166, -69.028, 1.92},
	{31681, "Alhena", 99.428, 16.399, 1.93},
	{100751, "Peacock", 306.412, -56.735, 1.94},
	{30324, "Mirzam", 95.675, -17.956, 1.98},

	// Magnitude 2.0-2.5
	{46390, "Alphard", 141.897, -8.659, 2.00},
	{9884, "Hamal", 31.793, 23.463, 2.00},
	{11767, "Polaris", 37.954, 89.264, 2.02},
	{3419, "Diphda", 10.897, -17.987, 2.02},
	{92855, "Nunki", 283.816, -26.297, 2.02},
	{65378, "Mizar", 200.981, 54.925, 2.04},
	{5447, "Mirach", 17.433, 35.621, 2.05},
	{677, "Alpheratz", 2.097, 29.091, 2.06},
	{68933, "Menkent", 211.671, -36.370, 2.06},
	{50583, "Algieba", 154.993, 19.842, 2.08},
	{72607, "Kochab", 222.676, 74.156, 2.08},
	{86032, "Rasalhague", 263.734, 12.560, 2.08},
	{27366, "Saiph", 86.939, -9.670, 2.09},
	{14576, "Algol", 47.042, 40.957, 2.12},
	{57632, "Denebola", 177.265, 14.572, 2.13},
	{44816, "Suhail", 136.999, -43.433, 2.21},
	{76267, "Alphecca", 233.672, 26.715, 2.23},
	{25930, "Mintaka", 83.002, -0.299, 2.23},
	{100453, "Sadr", 305.557, 40.257, 2.23},
	{87833, "Eltanin", 269.152, 51.489, 2.23},
	{3179, "Schedar", 10.127, 56.537, 2.23},
	{39429, "Naos", 120.896, -40.003, 2.25},
	{746, "Caph", 2.295, 59.150, 2.27},
	{82396, "Larawag", 252.541, -34.293, 2.29},
	{78401, "Dschubba", 240.083, -22.622, 2.32},
	{53910, "Merak", 165.460, 56.382, 2.37},
	{72105, "Izar", 221.247, 27.074, 2.37},
	{2081, "Ankaa", 6.571, -42.306, 2.38},
	{107315, "Enif", 326.046, 9.875, 2.39},
	{113881, "Scheat", 345.944, 28.083, 2.42},
	{84012, "Sabik", 257.595, -15.725, 2.43},
	{58001, "Phecda", 178.458, 53.695, 2.44},
	{35904, "Aludra", 111.024, -29.303, 2.45},
	{4427, "Navi", 14.177, 60.717, 2.47},
	{102488, "Aljanah", 311.553, 33.970, 2.48},
	{113963, "Markab", 346.190, 15.205, 2.49},

	// Magnitude 2.5-3.0
	{105199, "Alderamin", 319.645, 62.586, 2.51},
	{54872, "Zosma", 168.527, 20.524, 2.56},
	{25985, "Arneb", 83.183, -17.822, 2.58},
	{59803, "Gienah", 183.952, -17.542, 2.59},
	{74785, "Zubeneschamali", 229.252, -9.383, 2.61},
	{78820, "Acrab", 241.359, -19.805, 2.62},
	{8903, "Sheratan", 28.660, 20.808, 2.64},
	{26634, "Phact", 84.912, -34.074, 2.64},
	{61359, "Kraz", 188.597, -23.397, 2.65},
	{77070, "Unukalhai", 236.067, 6.426, 2.65},
	{6686, "Ruchbah", 21.454, 60.235, 2.68},
	{23015, "Hassaleh", 74.248, 33.166, 2.69},
	{97278, "Tarazed", 296.565, 10.613, 2.72},
	{61941, "Porrima", 190.415, -1.449, 2.74},
	{72622, "Zubenelgenubi", 222.720, -16.042, 2.75},
	{59747, "Imai", 183.786, -58.749, 2.79},
	{85670, "Rastaban", 262.608, 52.301, 2.79},
	{23875, "Cursa", 76.963, -5.086, 2.79},
	{63125, "Cor Caroli", 194.007, 38.318, 2.81},
	{1067, "Algenib", 3.309, 15.184, 2.83},
	{63608, "Vindemiatrix", 195.544, 10.959, 2.83},
	{25606, "Nihal", 82.061, -20.759, 2.84},
	{17702, "Alcyone", 56.871, 24.105, 2.87},
	{97165, "Fawaris", 296.244, 45.131, 2.87},
	{30343, "Tejat", 95.740, 22.513, 2.88},
	{36188, "Gomeisa", 111.788, 8.289, 2.90},
	{106278, "Sadalsuud", 322.890, -5.571, 2.91},
	{60965, "Algorab", 187.466, -16.515, 2.95},
	{109074, "Sadalmelik", 331.446, -0.320, 2.96},

	// Magnitude 3.0-4.5
	{75097, "Pherkad", 230.182, 71.834, 3.00},
	{32246, "Mebsuta", 100.983, 25.131, 3.06},
	{95947, "Albireo", 292.680, 27.960, 3.18},
	{93194, "Sulafat", 284.736, 32.690, 3.25},
	{54879, "Chertan", 168.560, 15.430, 3.33},
	{59774, "Megrez", 183.857, 57.033, 3.31},
	{8886, "Segin", 28.599, 63.670, 3.35},
	{26207, "Meissa", 83.784, 9.934, 3.39},
	{50335, "Adhafera", 154.173, 23.417, 3.43},
	{92420, "Sheliak", 282.520, 33.363, 3.52},
	{68756, "Thuban", 211.097, 64.376, 3.65},
	{98036, "Alshain", 298.828, 6.407, 3.71},
	{48455, "Rasalas", 148.191, 26.007, 3.88},
	{92791, "", 283.626, 36.899, 4.30},
	{91971, "", 281.193, 37.605, 4.34},
}
