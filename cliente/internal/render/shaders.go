package render

// O texcoord de cada vértice carrega (camada do atlas, código de luz):
// código = face*16 + ao*2 + flip, com face 6..11 para líquidos.
const chunkVertexShader = `
#version 330

in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec4 vertexColor;

uniform mat4 mvp;
uniform float time;

out vec3 fragWorldPos;
out vec4 fragColor;
out float fragShade;
flat out float fragLayer;

const float faceShade[6] = float[6](1.0, 0.5, 0.6, 0.6, 0.8, 0.8);
const float aoCurve[4] = float[4](0.35, 0.55, 0.75, 1.0);

void main()
{
    int code = int(vertexTexCoord.y + 0.5);
    int face = code / 16;
    bool liquid = face >= 6;
    if (liquid) {
        face -= 6;
    }
    int ao = (code % 16) / 2;

    vec3 pos = vertexPosition;
    // superfície da água levemente abaixo do bloco e ondulando
    if (liquid && face == 0) {
        pos.y -= 0.1 + 0.03 * sin(time * 1.5 + pos.x * 0.8 + pos.z * 0.6);
    }

    fragWorldPos = vertexPosition;
    fragColor = vertexColor;
    fragShade = faceShade[face] * aoCurve[ao];
    fragLayer = floor(vertexTexCoord.x + 0.5);
    gl_Position = mvp * vec4(pos, 1.0);
}
`

const chunkFragmentShader = `
#version 330

in vec3 fragWorldPos;
in vec4 fragColor;
in float fragShade;
flat in float fragLayer;

uniform sampler2D texture0;
uniform vec4 colDiffuse;
uniform float atlasLayers;
uniform vec3 camPos;

out vec4 finalColor;

const float halfTexel = 0.5 / 16.0;

void main()
{
    // UV em espaço de mundo pela orientação da face
    vec3 n = abs(normalize(cross(dFdx(fragWorldPos), dFdy(fragWorldPos))));
    vec2 uv;
    if (n.y > 0.9) {
        uv = fragWorldPos.xz;
    } else if (n.x > 0.9) {
        uv = fragWorldPos.zy;
    } else if (n.z > 0.9) {
        uv = fragWorldPos.xy;
    } else {
        uv = vec2(fragWorldPos.x, fragWorldPos.y);
    }
    uv = clamp(fract(uv), halfTexel, 1.0 - halfTexel);

    vec2 atlasUV = vec2(uv.x, (fragLayer + uv.y) / atlasLayers);
    vec4 texel = texture(texture0, atlasUV) * colDiffuse;
    if (texel.a < 0.1) {
        discard;
    }

    vec3 rgb = texel.rgb * fragColor.rgb * fragShade;

    float dist = length(camPos - fragWorldPos);
    vec3 fogColor = vec3(0.53, 0.71, 0.92);
    float fogFactor = clamp(exp(-pow(dist * 0.004, 2.0)), 0.0, 1.0);

    finalColor = vec4(mix(fogColor, rgb, fogFactor), texel.a * fragColor.a);
}
`
