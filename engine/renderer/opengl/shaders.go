package opengl

const glslVersion = "#version 410 core\n"

const (
	maxDirectionalLights = 4
	maxSpotLights        = 2
)

const cardVertexShader = glslVersion + `
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aTexcoord;
layout(location = 3) in vec4 aColour;
layout(location = 4) in vec4 aTangent;

uniform mat4 uProjection;
uniform mat4 uView;
uniform mat4 uModel;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vTexcoord;
out vec4 vColour;
out vec4 vTangent;

void main() {
	vec4 world = uModel * vec4(aPosition, 1.0);
	mat3 normalMatrix = transpose(inverse(mat3(uModel)));
	vWorldPos = world.xyz;
	vNormal = normalize(normalMatrix * aNormal);
	vTangent = vec4(normalize(mat3(uModel) * aTangent.xyz), aTangent.w);
	vTexcoord = aTexcoord;
	vColour = aColour;
	gl_Position = uProjection * uView * world;
}
`

// cardFragmentShader is prefixed with the version line and one #define per
// bound texture channel before compilation.
const cardFragmentShader = `
#define MAX_DIR_LIGHTS 4
#define MAX_SPOT_LIGHTS 2

in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vTexcoord;
in vec4 vColour;
in vec4 vTangent;

out vec4 fragColour;

const float PI = 3.14159265359;

uniform vec3 uViewPosition;

uniform vec3 uAmbient;
uniform int uHemiEnabled;
uniform vec3 uHemiSky;
uniform vec3 uHemiGround;

uniform int uDirLightCount;
uniform vec3 uDirLightDir[MAX_DIR_LIGHTS];
uniform vec3 uDirLightColour[MAX_DIR_LIGHTS];

uniform int uSpotLightCount;
uniform vec3 uSpotLightPos[MAX_SPOT_LIGHTS];
uniform vec3 uSpotLightDir[MAX_SPOT_LIGHTS];
uniform vec3 uSpotLightColour[MAX_SPOT_LIGHTS];
uniform float uSpotLightCos[MAX_SPOT_LIGHTS];

uniform vec3 uBaseColour;
uniform float uMetalness;
uniform float uRoughness;
uniform float uOpacity;
uniform float uClearcoat;
uniform float uClearcoatRoughness;

#ifdef USE_COLOR_MAP
uniform sampler2D uColorMap;
#endif
#ifdef USE_NORMAL_MAP
uniform sampler2D uNormalMap;
#endif
#ifdef USE_ROUGHNESS_MAP
uniform sampler2D uRoughnessMap;
#endif
#ifdef USE_METALNESS_MAP
uniform sampler2D uMetalnessMap;
#endif

float distributionGGX(float NdotH, float roughness) {
	float a = roughness * roughness;
	float a2 = a * a;
	float d = NdotH * NdotH * (a2 - 1.0) + 1.0;
	return a2 / (PI * d * d + 1e-5);
}

float geometrySmith(float NdotV, float NdotL, float roughness) {
	float r = roughness + 1.0;
	float k = (r * r) / 8.0;
	float gv = NdotV / (NdotV * (1.0 - k) + k);
	float gLight = NdotL / (NdotL * (1.0 - k) + k);
	return gv * gLight;
}

vec3 fresnelSchlick(float cosTheta, vec3 F0) {
	return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 shade(vec3 N, vec3 V, vec3 L, vec3 radiance, vec3 albedo, float metal, float rough) {
	vec3 H = normalize(V + L);
	float NdotL = max(dot(N, L), 0.0);
	float NdotV = max(dot(N, V), 1e-4);
	float NdotH = max(dot(N, H), 0.0);
	float HdotV = max(dot(H, V), 0.0);

	vec3 F0 = mix(vec3(0.04), albedo, metal);
	vec3 F = fresnelSchlick(HdotV, F0);
	float D = distributionGGX(NdotH, rough);
	float G = geometrySmith(NdotV, NdotL, rough);
	vec3 specular = D * G * F / (4.0 * NdotV * NdotL + 1e-4);
	vec3 kD = (vec3(1.0) - F) * (1.0 - metal);
	vec3 base = (kD * albedo / PI + specular) * radiance * NdotL;

	// Clear lacquer on top of the base layer.
	float Fc = fresnelSchlick(HdotV, vec3(0.04)).x * uClearcoat;
	float ccRough = max(uClearcoatRoughness, 0.04);
	float Dc = distributionGGX(NdotH, ccRough);
	float Gc = geometrySmith(NdotV, NdotL, ccRough);
	vec3 coat = vec3(Dc * Gc * Fc / (4.0 * NdotV * NdotL + 1e-4)) * radiance * NdotL;

	return base * (1.0 - Fc) + coat;
}

void main() {
	vec3 N = normalize(vNormal);
	if (!gl_FrontFacing) {
		N = -N;
	}
#ifdef USE_NORMAL_MAP
	vec3 T = normalize(vTangent.xyz - N * dot(N, vTangent.xyz));
	vec3 B = cross(N, T) * vTangent.w;
	vec3 mapN = texture(uNormalMap, vTexcoord).xyz * 2.0 - 1.0;
	N = normalize(mat3(T, B, N) * mapN);
#endif

	vec3 albedo = uBaseColour * vColour.rgb;
	float alpha = uOpacity * vColour.a;
#ifdef USE_COLOR_MAP
	vec4 texel = texture(uColorMap, vTexcoord);
	albedo *= texel.rgb;
	alpha *= texel.a;
#endif

	float rough = uRoughness;
#ifdef USE_ROUGHNESS_MAP
	rough = texture(uRoughnessMap, vTexcoord).g;
#endif
	float metal = uMetalness;
#ifdef USE_METALNESS_MAP
	metal = texture(uMetalnessMap, vTexcoord).b;
#endif
	rough = clamp(rough, 0.04, 1.0);
	metal = clamp(metal, 0.0, 1.0);

	vec3 V = normalize(uViewPosition - vWorldPos);
	vec3 F0 = mix(vec3(0.04), albedo, metal);

	vec3 irradiance = uAmbient;
	if (uHemiEnabled == 1) {
		float w = 0.5 * dot(N, vec3(0.0, 1.0, 0.0)) + 0.5;
		irradiance += mix(uHemiGround, uHemiSky, w);
	}
	vec3 colour = irradiance * (albedo * (1.0 - metal) + F0 * 0.25);

	for (int i = 0; i < uDirLightCount; ++i) {
		colour += shade(N, V, normalize(uDirLightDir[i]), uDirLightColour[i] * PI, albedo, metal, rough);
	}
	for (int i = 0; i < uSpotLightCount; ++i) {
		vec3 L = normalize(uSpotLightPos[i] - vWorldPos);
		float cosTheta = dot(-L, normalize(uSpotLightDir[i]));
		if (cosTheta > uSpotLightCos[i]) {
			colour += shade(N, V, L, uSpotLightColour[i] * PI, albedo, metal, rough);
		}
	}

	fragColour = vec4(pow(clamp(colour, 0.0, 1.0), vec3(1.0 / 2.2)), alpha);
}
`
