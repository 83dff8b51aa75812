package linq

type Number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

func Select[T any, K any](data []T, selector func(T) K) []K {
	r := make([]K, len(data))
	for i, dat := range data {
		r[i] = selector(dat)
	}
	return r
}

func Where[T any](data []T, cond func(T) bool) []T {
	r := make([]T, 0, len(data))
	for _, dat := range data {
		if cond(dat) {
			r = append(r, dat)
		}
	}
	return r
}

func Count[T any](data []T, cond func(T) bool) int {
	c := 0
	for _, dat := range data {
		if cond(dat) {
			c++
		}
	}
	return c
}

func Sum[T any](data []T, selector func(T) float64) float64 {
	r := float64(0)
	for _, dat := range data {
		r += selector(dat)
	}
	return r
}

func Mean[T any](data []T, selector func(T) float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return Sum(data, selector) / float64(len(data))
}

func Max[T Number](data []T) T {
	if len(data) == 0 {
		return 0
	}
	r := data[0]
	for _, dat := range data {
		if dat > r {
			r = dat
		}
	}
	return r
}
