package converter

import (
	"github.com/BariVakhidov/academyhub/internal/domain/models"
	storageModel "github.com/BariVakhidov/academyhub/internal/storage/model"
)

func ToUserFromStorage(storageUser storageModel.User) models.User {
	return models.User{
		ID:       storageUser.ID,
		Username: storageUser.Username,
		PassHash: storageUser.PassHash,
	}
}
