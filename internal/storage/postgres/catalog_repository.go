package postgres

import (
	"context"
	"database/sql"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

var (
	dishesTable = entityTable[domain.Dish]{
		table:   "dishes",
		columns: []string{"dish_id", "dish_name", "dish_type_id", "dish_base_id", "COALESCE(dish_image, '')"},
		orderBy: "dish_id",
		scan: func(row rowScanner) (domain.Dish, error) {
			var d domain.Dish
			err := row.Scan(&d.ID, &d.Name, &d.TypeID, &d.BaseID, &d.Image)
			return d, err
		},
	}
	dishTypesTable = entityTable[domain.DishType]{
		table:   "dish_types",
		columns: []string{"type_id", "type_name"},
		orderBy: "type_id",
		scan: func(row rowScanner) (domain.DishType, error) {
			var t domain.DishType
			err := row.Scan(&t.ID, &t.Name)
			return t, err
		},
	}
	dishBasesTable = entityTable[domain.DishBase]{
		table:   "dish_base",
		columns: []string{"base_id", "base_name", "base_exit"},
		orderBy: "base_id",
		scan: func(row rowScanner) (domain.DishBase, error) {
			var b domain.DishBase
			err := row.Scan(&b.ID, &b.Name, &b.Exit)
			return b, err
		},
	}
	productsTable = entityTable[domain.Product]{
		table:   "products",
		columns: []string{"prod_id", "prod_name", "prod_protein", "prod_fats", "prod_carboh"},
		orderBy: "prod_id",
		scan: func(row rowScanner) (domain.Product, error) {
			var p domain.Product
			err := row.Scan(&p.ID, &p.Name, &p.Protein, &p.Fats, &p.Carbohydrates)
			return p, err
		},
	}
	structureTable = entityTable[domain.Structure]{
		table:   "structure",
		columns: []string{"dishes_id", "products_id", "weight"},
		orderBy: "products_id",
		scan: func(row rowScanner) (domain.Structure, error) {
			var s domain.Structure
			err := row.Scan(&s.DishID, &s.ProductID, &s.Weight)
			return s, err
		},
	}
	paytypesTable = entityTable[domain.Paytype]{
		table:   "tb_paytype",
		columns: []string{"type_id", "type_name"},
		orderBy: "type_id",
		scan: func(row rowScanner) (domain.Paytype, error) {
			var p domain.Paytype
			err := row.Scan(&p.ID, &p.Name)
			return p, err
		},
	}
	usersTable = entityTable[domain.User]{
		table: "tb_user",
		columns: []string{
			"user_id", "first_name", "last_name", "patronymic", "date_of_birthday",
			"login", "user_password", "phone", "adress", "user_role_id",
		},
		orderBy: "user_id",
		scan: func(row rowScanner) (domain.User, error) {
			var u domain.User
			err := row.Scan(
				&u.ID, &u.FirstName, &u.LastName, &u.Patronymic, &u.BirthDate,
				&u.Login, &u.Password, &u.Phone, &u.Address, &u.RoleID,
			)
			return u, err
		},
	}
)

type catalogRepository struct {
	store *Store
}

// NewCatalogRepository создаёт PostgreSQL-реализацию CatalogRepository.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepository{store: store}
}

func (r *catalogRepository) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	return listRows(ctx, r.store, dishesTable, "")
}

func (r *catalogRepository) ListDishTypes(ctx context.Context) ([]domain.DishType, error) {
	return listRows(ctx, r.store, dishTypesTable, "")
}

func (r *catalogRepository) ListDishBases(ctx context.Context) ([]domain.DishBase, error) {
	return listRows(ctx, r.store, dishBasesTable, "")
}

func (r *catalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return listRows(ctx, r.store, productsTable, "")
}

func (r *catalogRepository) ListPaytypes(ctx context.Context) ([]domain.Paytype, error) {
	return listRows(ctx, r.store, paytypesTable, "")
}

func (r *catalogRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	return listRows(ctx, r.store, usersTable, "")
}

func (r *catalogRepository) StructureByDish(ctx context.Context, dishID int64) ([]domain.Structure, error) {
	return listRows(ctx, r.store, structureTable, "dishes_id = $1", dishID)
}

func (r *catalogRepository) CreateDish(ctx context.Context, fields domain.DishFields) (int64, error) {
	var id int64
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		if err := conn.QueryRowContext(ctx, `
			INSERT INTO dishes (dish_name, dish_type_id, dish_base_id, dish_image)
			VALUES ($1, $2, $3, $4)
			RETURNING dish_id
		`, fields.Name, fields.TypeID, fields.BaseID, fields.Image).Scan(&id); err != nil {
			return wrapError("insert dish", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *catalogRepository) UpdateDish(ctx context.Context, id int64, fields domain.DishFields) (int64, error) {
	return r.exec(ctx, "update dish", `
		UPDATE dishes
		SET dish_name = $1,
		    dish_type_id = $2,
		    dish_base_id = $3,
		    dish_image = $4
		WHERE dish_id = $5
	`, fields.Name, fields.TypeID, fields.BaseID, fields.Image, id)
}

func (r *catalogRepository) DeleteDish(ctx context.Context, id int64) (int64, error) {
	return r.exec(ctx, "delete dish", `DELETE FROM dishes WHERE dish_id = $1`, id)
}

// exec выполняет одиночную запись и возвращает число затронутых строк.
func (r *catalogRepository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	var affected int64
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return wrapError(op, err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return wrapError(op+" rows affected", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

var _ domain.CatalogRepository = (*catalogRepository)(nil)
