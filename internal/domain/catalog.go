package domain

import "strings"

// DefaultDishImage подставляется вместо пустой ссылки на изображение блюда.
const DefaultDishImage = "default.png"

// Dish — позиция меню, ссылающаяся на тип и основу блюда.
type Dish struct {
	ID     int64  `json:"dish_id"`
	Name   string `json:"dish_name"`
	TypeID int64  `json:"dish_type_id"`
	BaseID int64  `json:"dish_base_id"`
	Image  string `json:"dish_image"`
}

// WithDefaultImage возвращает копию блюда с изображением-заглушкой, если ссылка пустая.
// Значение в хранилище не меняется.
func (d Dish) WithDefaultImage() Dish {
	if strings.TrimSpace(d.Image) == "" {
		d.Image = DefaultDishImage
	}
	return d
}

// DishFields — изменяемые поля блюда для создания и обновления.
type DishFields struct {
	Name   string `json:"dish_name"`
	TypeID int64  `json:"dish_type_id"`
	BaseID int64  `json:"dish_base_id"`
	Image  string `json:"dish_image"`
}

// Validate проверяет обязательные поля блюда.
func (f DishFields) Validate() []error {
	var errs []error
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, ErrDishNameRequired)
	}
	if f.TypeID <= 0 {
		errs = append(errs, ErrDishTypeRequired)
	}
	if f.BaseID <= 0 {
		errs = append(errs, ErrDishBaseRequired)
	}
	return errs
}

// DishType — тип блюда (суп, салат, ...).
type DishType struct {
	ID   int64  `json:"type_id"`
	Name string `json:"type_name"`
}

// DishBase — основа блюда с выходом готового продукта.
type DishBase struct {
	ID   int64  `json:"base_id"`
	Name string `json:"base_name"`
	Exit int32  `json:"base_exit"`
}

// Product — продукт с пищевой ценностью в целых единицах.
type Product struct {
	ID            int64  `json:"prod_id"`
	Name          string `json:"prod_name"`
	Protein       int32  `json:"prod_protein"`
	Fats          int32  `json:"prod_fats"`
	Carbohydrates int32  `json:"prod_carboh"`
}

// Structure — одна строка состава блюда.
// Повторяющиеся пары (блюдо, продукт) на этом уровне не отклоняются.
type Structure struct {
	DishID    int64 `json:"dishes_id"`
	ProductID int64 `json:"products_id"`
	Weight    int32 `json:"weight"`
}

// User — пользователь приложения. Пароль наружу не сериализуется.
type User struct {
	ID         int64  `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Patronymic string `json:"patronymic"`
	BirthDate  Date   `json:"date_of_birthday"`
	Login      string `json:"login"`
	Password   string `json:"-"`
	Phone      string `json:"phone"`
	Address    string `json:"adress"`
	RoleID     int64  `json:"user_role_id"`
}

// Paytype — способ оплаты, выбираемый в заказе.
type Paytype struct {
	ID   int64  `json:"type_id"`
	Name string `json:"type_name"`
}
