package cityjson

// Material describes one surface material, X3D-style. Name doubles as the
// deduplication key when streams are merged.
type Material struct {
	Name             string      `json:"name"`
	AmbientIntensity *float64    `json:"ambientIntensity,omitempty"`
	DiffuseColor     *[3]float64 `json:"diffuseColor,omitempty"`
	EmissiveColor    *[3]float64 `json:"emissiveColor,omitempty"`
	SpecularColor    *[3]float64 `json:"specularColor,omitempty"`
	Shininess        *float64    `json:"shininess,omitempty"`
	Transparency     *float64    `json:"transparency,omitempty"`
	IsSmooth         *bool       `json:"isSmooth,omitempty"`
}

// Texture describes one texture image. Image doubles as the deduplication
// key when streams are merged.
type Texture struct {
	Type        string      `json:"type"`
	Image       string      `json:"image"`
	WrapMode    string      `json:"wrapMode,omitempty"`
	TextureType string      `json:"textureType,omitempty"`
	BorderColor *[4]float64 `json:"borderColor,omitempty"`
}

// Appearance carries the materials, textures and UV coordinates referenced
// by geometries in the same document or feature.
type Appearance struct {
	Materials            []Material   `json:"materials,omitempty"`
	Textures             []Texture    `json:"textures,omitempty"`
	VerticesTexture      [][2]float64 `json:"vertices-texture,omitempty"`
	DefaultThemeTexture  string       `json:"default-theme-texture,omitempty"`
	DefaultThemeMaterial string       `json:"default-theme-material,omitempty"`
}

// Empty reports whether a holds nothing worth serializing.
func (a *Appearance) Empty() bool {
	return a == nil ||
		len(a.Materials) == 0 && len(a.Textures) == 0 && len(a.VerticesTexture) == 0 &&
			a.DefaultThemeTexture == "" && a.DefaultThemeMaterial == ""
}
