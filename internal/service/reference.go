package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Формат публичного трек-номера: ADM-<год>-<6 символов base36>.
// Пространство 36^6 на год; коллизии разрешаются повторной генерацией
// под уникальным ограничением БД.
const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func generateReferenceID(year int) (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate reference id: %w", err)
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ADM-%d-%s", year, suffix), nil
}
