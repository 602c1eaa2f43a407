package util

import "math"

// DistSq retorna a distância quadrada entre dois vetores 3D.
func DistSq(v1, v2 Vector3) float32 {
	d := v1.Sub(v2)
	return d.Dot(d)
}

// Clamp limita v ao intervalo [lo, hi].
func Clamp[T int | int32 | int64 | float32 | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limita um float64 ao intervalo [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// RoundInt arredonda para o inteiro mais próximo (metade para longe do zero).
func RoundInt(v float64) int {
	return int(math.Round(v))
}
