package domain

import "strings"

// BuildProductText строит текст эмбеддинга продукта: бренд + название + модель.
// Пустые поля отбрасываются, выжившие соединяются одним пробелом.
// Пример: "SMC 气缸 CDQ2B20-10D". Пустая строка означает, что продукт неиндексируем.
func BuildProductText(brand, name, model string) string {
	return joinNonEmpty(brand, name, model)
}

// BuildQueryText строит текст эмбеддинга запроса в той же структуре, что и текст
// продукта. Совпадение структуры обязательно: индексный и поисковый пути должны
// попадать в одно и то же пространство эмбеддингов.
func BuildQueryText(name, spec, brand string) string {
	return joinNonEmpty(brand, name, spec)
}

func joinNonEmpty(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	return strings.Join(parts, " ")
}
