package renderer

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;
layout (location = 3) in vec4 aJoints;
layout (location = 4) in vec4 aWeights;

const int MAX_JOINTS = 64;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform bool uSkinned;
uniform mat4 uJoints[MAX_JOINTS];

out vec3 vNormal;
out vec2 vTexCoord;

int joint(float j) {
    return clamp(int(j), 0, MAX_JOINTS - 1);
}

// Joint matrices are already in world space, so a weighted vertex
// replaces uModel. Unweighted vertices keep the node transform.
mat4 modelMatrix() {
    if (!uSkinned) {
        return uModel;
    }
    float total = aWeights.x + aWeights.y + aWeights.z + aWeights.w;
    if (total <= 0.0) {
        return uModel;
    }
    mat4 skin = aWeights.x * uJoints[joint(aJoints.x)]
              + aWeights.y * uJoints[joint(aJoints.y)]
              + aWeights.z * uJoints[joint(aJoints.z)]
              + aWeights.w * uJoints[joint(aJoints.w)];
    return skin / total;
}

void main() {
    mat4 model = modelMatrix();
    vNormal = mat3(transpose(inverse(model))) * aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * model * vec4(aPosition, 1.0);
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;
in vec2 vTexCoord;

uniform vec4 uBaseColor;
uniform bool uHasTexture;
uniform sampler2D uTexture;
uniform vec3 uAmbient;
uniform vec3 uSunDir;
uniform vec3 uSunColor;

out vec4 FragColor;

void main() {
    vec4 base = uBaseColor;
    if (uHasTexture) {
        base *= texture(uTexture, vTexCoord);
    }
    if (base.a < 0.01) {
        discard;
    }

    vec3 n = normalize(vNormal);
    float diffuse = max(dot(n, normalize(uSunDir)), 0.0);
    vec3 light = uAmbient + uSunColor * diffuse;

    FragColor = vec4(base.rgb * light, base.a);
}
`

// colorVertexShader serves both the world-space grid (uMVP = view-proj)
// and the screen-space overlay (uMVP = ortho).
const colorVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aColor;

uniform mat4 uMVP;

out vec3 vColor;

void main() {
    vColor = aColor;
    gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const colorFragmentShader = `
#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
    FragColor = vec4(vColor, 1.0);
}
`
