package store

import (
	"context"
	"fmt"

	"github.com/mstgnz/bluepay/provider"
)

// GetCustomerByID implements provider.CustomerService
func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*provider.Customer, error) {
	var c provider.Customer
	err := s.queryRow(ctx, `SELECT id, guid, email, billing_address_id FROM customers WHERE id = ?`, id).
		Scan(&c.ID, &c.GUID, &c.Email, &c.BillingAddressID)
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get customer %d: %w", id, err)
		}
		return nil, nil
	}
	return &c, nil
}

// CreateCustomer inserts a customer and sets its ID
func (s *Store) CreateCustomer(ctx context.Context, c *provider.Customer) error {
	id, err := s.insertID(ctx, `INSERT INTO customers (guid, email, billing_address_id) VALUES (?, ?, ?)`,
		c.GUID, c.Email, c.BillingAddressID)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	c.ID = id
	return nil
}

// GetAddressByID implements provider.AddressService
func (s *Store) GetAddressByID(ctx context.Context, id int64) (*provider.Address, error) {
	var a provider.Address
	err := s.queryRow(ctx, `SELECT id, first_name, last_name, email, address1, address2, city,
		zip_postal_code, phone_number, country_id, state_province_id FROM addresses WHERE id = ?`, id).
		Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Address1, &a.Address2, &a.City,
			&a.ZipPostalCode, &a.PhoneNumber, &a.CountryID, &a.StateProvinceID)
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get address %d: %w", id, err)
		}
		return nil, nil
	}
	return &a, nil
}

// CreateAddress inserts an address and sets its ID
func (s *Store) CreateAddress(ctx context.Context, a *provider.Address) error {
	id, err := s.insertID(ctx, `INSERT INTO addresses (first_name, last_name, email, address1, address2, city,
		zip_postal_code, phone_number, country_id, state_province_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.FirstName, a.LastName, a.Email, a.Address1, a.Address2, a.City,
		a.ZipPostalCode, a.PhoneNumber, a.CountryID, a.StateProvinceID)
	if err != nil {
		return fmt.Errorf("create address: %w", err)
	}
	a.ID = id
	return nil
}

// GetCountryByID implements provider.CountryService
func (s *Store) GetCountryByID(ctx context.Context, id int64) (*provider.Country, error) {
	var c provider.Country
	err := s.queryRow(ctx, `SELECT id, name, three_letter_iso_code FROM countries WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.ThreeLetterISOCode)
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get country %d: %w", id, err)
		}
		return nil, nil
	}
	return &c, nil
}

// CreateCountry inserts a country and sets its ID
func (s *Store) CreateCountry(ctx context.Context, c *provider.Country) error {
	id, err := s.insertID(ctx, `INSERT INTO countries (name, three_letter_iso_code) VALUES (?, ?)`, c.Name, c.ThreeLetterISOCode)
	if err != nil {
		return fmt.Errorf("create country: %w", err)
	}
	c.ID = id
	return nil
}

// GetStateProvinceByID implements provider.StateProvinceService
func (s *Store) GetStateProvinceByID(ctx context.Context, id int64) (*provider.StateProvince, error) {
	var st provider.StateProvince
	err := s.queryRow(ctx, `SELECT id, country_id, name, abbreviation FROM state_provinces WHERE id = ?`, id).
		Scan(&st.ID, &st.CountryID, &st.Name, &st.Abbreviation)
	if err != nil {
		if err = notFound(err); err != nil {
			return nil, fmt.Errorf("get state %d: %w", id, err)
		}
		return nil, nil
	}
	return &st, nil
}

// CreateStateProvince inserts a state and sets its ID
func (s *Store) CreateStateProvince(ctx context.Context, st *provider.StateProvince) error {
	id, err := s.insertID(ctx, `INSERT INTO state_provinces (country_id, name, abbreviation) VALUES (?, ?, ?)`,
		st.CountryID, st.Name, st.Abbreviation)
	if err != nil {
		return fmt.Errorf("create state: %w", err)
	}
	st.ID = id
	return nil
}
